package constant

const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/109.0"

const (
	DefaultProtocol  = "https"
	DefaultLoginFile = "sslvpn/Login/Login"
	DefaultRealm     = "ssl_vpn"
	DefaultLoginType = "Standard"

	MainFile       = "sslvpn/Portal/Main"
	ExtenderFile   = "sslvpn/SNX/extender"
	ActivationFile = "sslvpn/Login/ActivateLogin?ActivateLogin=activate&LangSelect=en_US&submit=Continue&HeightData="
)

// URL predicates of the login sequence.
const (
	MainSuffix          = "Portal/Main"
	ActivateLoginSuffix = "Login/ActivateLogin"
	MultiChallengeToken = "MultiChallenge"
)

// Page markers.
const (
	LoginFormID          = "loginForm"
	ChallengeFormName    = "MCForm"
	RSAScriptMarker      = "RSA"
	ExtenderMarker       = "/* Extender.user_name"
	ErrorMessageSelector = ".errorMessage"
)
