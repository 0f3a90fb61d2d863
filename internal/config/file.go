package config

import (
	"math"

	"github.com/nao1215/pagescore/internal/audit"
	"github.com/nao1215/pagescore/internal/model"
	"github.com/nao1215/pagescore/internal/score"
)

// WeightsConfig overrides individual severity weights.
// A nil field keeps the default weight.
type WeightsConfig struct {
	Critical *float64 `yaml:"critical,omitempty"`
	Serious  *float64 `yaml:"serious,omitempty"`
	Moderate *float64 `yaml:"moderate,omitempty"`
	Minor    *float64 `yaml:"minor,omitempty"`
}

// ThresholdsConfig overrides individual audit thresholds.
// A nil field keeps the default threshold.
type ThresholdsConfig struct {
	TitleMin         *int `yaml:"title_min,omitempty"`
	TitleMax         *int `yaml:"title_max,omitempty"`
	DescriptionMin   *int `yaml:"description_min,omitempty"`
	DescriptionMax   *int `yaml:"description_max,omitempty"`
	ThinWordCount    *int `yaml:"thin_word_count,omitempty"`
	ShortWordCount   *int `yaml:"short_word_count,omitempty"`
	MinInternalLinks *int `yaml:"min_internal_links,omitempty"`
}

// File represents the structure of the .pagescore configuration file.
type File struct {
	// Site holds the site-wide settings passed to the renderer.
	Site model.SiteSettings `yaml:"site,omitempty"`

	// Menus are the navigation menus passed to the renderer.
	Menus []model.Menu `yaml:"menus,omitempty"`

	// Weights overrides the score penalty per violation severity.
	Weights WeightsConfig `yaml:"weights,omitempty"`

	// Thresholds overrides the audit rule limits.
	Thresholds ThresholdsConfig `yaml:"thresholds,omitempty"`
}

// ScoreWeights returns the default weights with the configured overrides applied.
func (f *File) ScoreWeights() score.Weights {
	w := score.DefaultWeights()
	if f == nil {
		return w
	}
	overlayFloat(&w.Critical, f.Weights.Critical)
	overlayFloat(&w.Serious, f.Weights.Serious)
	overlayFloat(&w.Moderate, f.Weights.Moderate)
	overlayFloat(&w.Minor, f.Weights.Minor)
	return w
}

// AuditThresholds returns the default thresholds with the configured overrides applied.
func (f *File) AuditThresholds() audit.Thresholds {
	th := audit.DefaultThresholds()
	if f == nil {
		return th
	}
	overlayInt(&th.TitleMin, f.Thresholds.TitleMin)
	overlayInt(&th.TitleMax, f.Thresholds.TitleMax)
	overlayInt(&th.DescriptionMin, f.Thresholds.DescriptionMin)
	overlayInt(&th.DescriptionMax, f.Thresholds.DescriptionMax)
	overlayInt(&th.ThinWordCount, f.Thresholds.ThinWordCount)
	overlayInt(&th.ShortWordCount, f.Thresholds.ShortWordCount)
	overlayInt(&th.MinInternalLinks, f.Thresholds.MinInternalLinks)
	return th
}

// SiteSettings returns the configured site settings, or the zero value for a nil File.
func (f *File) SiteSettings() model.SiteSettings {
	if f == nil {
		return model.SiteSettings{}
	}
	return f.Site
}

// MenuList returns the configured menus, or nil for a nil File.
func (f *File) MenuList() []model.Menu {
	if f == nil {
		return nil
	}
	return f.Menus
}

// Validate checks the weights and thresholds after overrides are applied.
func (f *File) Validate() error {
	w := f.ScoreWeights()
	for _, v := range []float64{w.Critical, w.Serious, w.Moderate, w.Minor} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidWeights
		}
	}

	th := f.AuditThresholds()
	for _, v := range []int{
		th.TitleMin, th.TitleMax, th.DescriptionMin, th.DescriptionMax,
		th.ThinWordCount, th.ShortWordCount, th.MinInternalLinks,
	} {
		if v < 0 {
			return ErrInvalidThresholds
		}
	}
	if th.TitleMin > th.TitleMax || th.DescriptionMin > th.DescriptionMax || th.ThinWordCount > th.ShortWordCount {
		return ErrInvalidThresholds
	}

	return nil
}

func overlayFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func overlayInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
