package constant

const (
	DefaultSNXPath = "snx"
	SNXDaemonFlag  = "-Z"
	SNXControlHost = "127.0.0.1"
	SNXControlPort = 7776
)
