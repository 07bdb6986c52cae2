// Package config loads, validates, and saves monitor settings.
//
// Settings live in a YAML file (thresholds, pacing, frame source, alert
// channels, optional session snapshot path). Secrets never appear in YAML:
// they are overlaid from the environment, with an optional .env file for
// development, matching how the sensor's original deployment was credentialed.
package config
