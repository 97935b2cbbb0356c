package constant

import E "github.com/sagernet/sing/common/exceptions"

var ErrMissingHost = E.New("missing portal host")

var ErrHelperNotStarted = E.New("tunnel helper did not start")
