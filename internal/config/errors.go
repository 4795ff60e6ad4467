package config

import "errors"

var (
	ErrPortInvalid       = errors.New("port is invalid")
	ErrLogLevelInvalid   = errors.New("log level is invalid")
	ErrLogFormatInvalid  = errors.New("log format is invalid")
	ErrDifficultyInvalid = errors.New("default difficulty is invalid")
	ErrClipboardInvalid  = errors.New("clipboard mode is invalid")
	ErrSessionTTLInvalid = errors.New("session ttl is invalid")
	ErrConfigFileInvalid = errors.New("config file is invalid")
)
