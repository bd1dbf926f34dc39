// Package config holds the classifurlr configuration: classifier weights,
// the filter chain, rollup parameters and worker settings, plus the CLI
// output preferences. Values come from NewConfig defaults, an optional
// YAML file and command line flags, in that order.
package config
