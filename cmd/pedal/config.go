package main

import "github.com/kelseyhightower/envconfig"

// settings are read from PEDAL_* environment variables.
type settings struct {
	Unit   string `default:"./convert" desc:"processing unit executable"`
	Effect string `default:"echo" desc:"initial effect identity"`
	Ffmpeg string `default:"ffmpeg" desc:"converter executable"`
	Record string `desc:"wav file to record playback to"`
}

func loadSettings() (settings, error) {
	var s settings
	err := envconfig.Process("pedal", &s)
	return s, err
}
