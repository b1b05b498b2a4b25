package config

import "errors"

var (
	ErrMissingHTTPAddr = errors.New("http address is required (set http_addr in the config file or HTTP_ADDR env var)")
	ErrInvalidTimeout  = errors.New("adapter and probe timeouts must be positive")
)
