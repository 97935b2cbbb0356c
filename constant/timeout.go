package constant

import "time"

const (
	HTTPTimeout        = 10 * time.Second
	DNSTimeout         = 5 * time.Second
	HelperAnswerBuffer = 4096
)
