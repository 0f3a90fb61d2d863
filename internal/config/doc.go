// Package config holds the pagescore configuration: command line options
// with their defaults and validation, the optional .pagescore YAML file
// (site settings, menus, score weights and audit thresholds) and the page
// export loader used by the scan and serve commands.
package config
