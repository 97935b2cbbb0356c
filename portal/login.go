package portal

import (
	"context"
	"errors"
	"net/url"

	C "github.com/snxvpn/snxconnect/constant"
	"github.com/snxvpn/snxconnect/log"
	"github.com/snxvpn/snxconnect/option"
	"github.com/snxvpn/snxconnect/snx"

	E "github.com/sagernet/sing/common/exceptions"
	F "github.com/sagernet/sing/common/format"
)

type State uint8

const (
	StateStart State = iota
	StateFetchLogin
	StateFindRSAScript
	StateParseRSA
	StateFindLoginForm
	StateSubmitCredentials
	StateMultiChallenge
	StateActivateLogin
	StateCheckError
	StateAuthenticated
	StateDone
)

var stateNames = map[State]string{
	StateStart:             "start",
	StateFetchLogin:        "fetch login",
	StateFindRSAScript:     "find RSA script",
	StateParseRSA:          "parse RSA",
	StateFindLoginForm:     "find login form",
	StateSubmitCredentials: "submit credentials",
	StateMultiChallenge:    "multi challenge",
	StateActivateLogin:     "activate login",
	StateCheckError:        "check error",
	StateAuthenticated:     "authenticated",
	StateDone:              "done",
}

func (s State) String() string {
	name, loaded := stateNames[s]
	if !loaded {
		return F.ToString(uint8(s))
	}
	return name
}

type MachineOptions struct {
	LoginFile        string
	Realm            string
	LoginType        string
	HeightData       string
	Username         string
	Password         string
	MultiChallenge   option.MultiChallenge
	CookiePath       string
	SaveCookies      bool
	CookiesLoaded    bool
	UseHostAsGateway bool
}

type Result struct {
	Extender snx.Extender
	Record   *snx.Record
}

// Machine walks the portal login sequence up to the SNX extender page.
type Machine struct {
	logger    log.ContextLogger
	session   *Session
	extractor Extractor
	prompter  Prompter
	resolver  snx.Resolver
	options   MachineOptions
}

func NewMachine(logger log.ContextLogger, transport *Transport, extractor Extractor, prompter Prompter, resolver snx.Resolver, options MachineOptions) *Machine {
	if options.LoginFile == "" {
		options.LoginFile = C.DefaultLoginFile
	}
	if options.Realm == "" {
		options.Realm = C.DefaultRealm
	}
	if options.LoginType == "" {
		options.LoginType = C.DefaultLoginType
	}
	if extractor == nil {
		extractor = NewHTMLExtractor()
	}
	if resolver == nil {
		resolver = &snx.SystemResolver{}
	}
	return &Machine{
		logger:    logger,
		session:   NewSession(transport, Cursor(options.LoginFile)),
		extractor: extractor,
		prompter:  prompter,
		resolver:  resolver,
		options:   options,
	}
}

func (m *Machine) Session() *Session {
	return m.session
}

type loginContext struct {
	ctx       context.Context
	loginPage *Page
	encoder   *PasswordEncoder
	username  string
	password  string
	challenge string
	result    *Result
}

type stateHandler func(lc *loginContext) (State, error)

func (m *Machine) handler(state State) stateHandler {
	switch state {
	case StateStart:
		return m.start
	case StateFetchLogin:
		return m.fetchLogin
	case StateFindRSAScript:
		return m.findRSAScript
	case StateParseRSA:
		return m.parseRSA
	case StateFindLoginForm:
		return m.findLoginForm
	case StateSubmitCredentials:
		return m.submitCredentials
	case StateMultiChallenge:
		return m.multiChallenge
	case StateActivateLogin:
		return m.activateLogin
	case StateCheckError:
		return m.checkError
	case StateAuthenticated:
		return m.authenticated
	default:
		return nil
	}
}

// Login runs the sequence and returns the extender variables with the
// handshake record built from them.
func (m *Machine) Login(ctx context.Context) (*Result, error) {
	lc := &loginContext{
		ctx:       ctx,
		username:  m.options.Username,
		password:  m.options.Password,
		challenge: m.options.MultiChallenge.Code,
	}
	state := StateStart
	for state != StateDone {
		handler := m.handler(state)
		if handler == nil {
			return nil, E.New("unknown login state: ", state)
		}
		m.logger.TraceContext(ctx, "login state: ", state)
		next, err := handler(lc)
		if err != nil {
			return nil, E.Cause(err, state.String())
		}
		state = next
	}
	return lc.result, nil
}

func (m *Machine) start(lc *loginContext) (State, error) {
	if !m.options.CookiesLoaded {
		return StateFetchLogin, nil
	}
	m.logger.DebugContext(lc.ctx, "probing saved session")
	page, err := m.session.Open(lc.ctx, C.MainFile, nil)
	if err != nil {
		return 0, err
	}
	if page.IsMain() {
		m.logger.InfoContext(lc.ctx, "saved session still valid")
		return StateAuthenticated, nil
	}
	m.logger.DebugContext(lc.ctx, "saved session rejected, landed on ", page.Location())
	m.session.Transport().Jar().Clear()
	m.session.Follow(page.Location())
	return StateFetchLogin, nil
}

func (m *Machine) fetchLogin(lc *loginContext) (State, error) {
	page, err := m.session.Open(lc.ctx, "", nil)
	if err != nil {
		return 0, err
	}
	lc.loginPage = page
	return StateFindRSAScript, nil
}

func (m *Machine) findRSAScript(lc *loginContext) (State, error) {
	source, found := m.extractor.FindRSAScript(lc.loginPage)
	if !found {
		return 0, &ExtractionError{Expected: "RSA parameters script", URL: lc.loginPage.Location()}
	}
	m.session.Follow(source)
	m.logger.DebugContext(lc.ctx, "RSA script: ", m.session.Cursor)
	return StateParseRSA, nil
}

func (m *Machine) parseRSA(lc *loginContext) (State, error) {
	page, err := m.session.Open(lc.ctx, "", nil)
	if err != nil {
		return 0, err
	}
	params, err := m.extractor.ParseRSAParams(page.Content)
	if err != nil {
		var extractionErr *ExtractionError
		if errors.As(err, &extractionErr) && extractionErr.URL == "" {
			extractionErr.URL = page.Location()
		}
		return 0, err
	}
	lc.encoder, err = NewPasswordEncoder(params)
	if err != nil {
		return 0, err
	}
	return StateFindLoginForm, nil
}

func (m *Machine) findLoginForm(lc *loginContext) (State, error) {
	form, err := m.extractor.FindForm(lc.loginPage, FormByID(C.LoginFormID))
	if err != nil {
		return 0, err
	}
	m.session.Follow(form.Action)
	return StateSubmitCredentials, nil
}

func (m *Machine) submitCredentials(lc *loginContext) (State, error) {
	var err error
	if lc.username == "" {
		lc.username, err = m.prompt("Username", false)
		if err != nil {
			return 0, err
		}
	}
	if lc.password == "" {
		lc.password, err = m.prompt("Password", true)
		if err != nil {
			return 0, err
		}
	}
	encrypted, err := lc.encoder.Encrypt(lc.password)
	if err != nil {
		return 0, err
	}
	form := url.Values{
		"selectedRealm": {m.options.Realm},
		"loginType":     {m.options.LoginType},
		"userName":      {lc.username},
		"pin":           {lc.password},
		"password":      {encrypted},
		"HeightData":    {m.options.HeightData},
	}
	page, err := m.session.Open(lc.ctx, "", form)
	if err != nil {
		return 0, err
	}
	if m.options.MultiChallenge.Enabled && page.IsMultiChallenge() {
		return StateMultiChallenge, nil
	}
	return StateActivateLogin, nil
}

func (m *Machine) multiChallenge(lc *loginContext) (State, error) {
	var err error
	if lc.challenge == "" {
		lc.challenge, err = m.prompt("MultiChallenge code", false)
		if err != nil {
			return 0, err
		}
	}
	form, err := m.extractor.FindForm(m.session.Page, FormByName(C.ChallengeFormName))
	if err != nil {
		return 0, err
	}
	m.session.Follow(form.Action)
	encrypted, err := lc.encoder.Encrypt(lc.challenge)
	if err != nil {
		return 0, err
	}
	values := form.Values()
	values.Set("pin", "")
	values.Set("password", encrypted)
	page, err := m.session.Open(lc.ctx, "", values)
	if err != nil {
		return 0, err
	}
	if message, found := m.extractor.CheckError(page); found {
		return 0, &AuthenticationError{Message: message}
	}
	if page.IsMultiChallenge() {
		return StateMultiChallenge, nil
	}
	return StateActivateLogin, nil
}

func (m *Machine) activateLogin(lc *loginContext) (State, error) {
	if !m.session.Page.IsActivateLogin() {
		return StateCheckError, nil
	}
	m.saveCookies(lc.ctx)
	_, err := m.session.Open(lc.ctx, C.ActivationFile, nil)
	if err != nil {
		return 0, err
	}
	return StateCheckError, nil
}

func (m *Machine) checkError(lc *loginContext) (State, error) {
	page := m.session.Page
	if message, found := m.extractor.CheckError(page); found {
		return 0, &AuthenticationError{Message: message}
	}
	if !page.IsMain() {
		return 0, &UnexpectedResponseError{URL: page.Location()}
	}
	return StateAuthenticated, nil
}

func (m *Machine) authenticated(lc *loginContext) (State, error) {
	m.saveCookies(lc.ctx)
	page, err := m.session.Open(lc.ctx, C.ExtenderFile, nil)
	if err != nil {
		return 0, err
	}
	extender, err := m.extractor.ParseExtender(page)
	if err != nil {
		return 0, err
	}
	m.logger.DebugContext(lc.ctx, "extender variables: ", extender)
	record, err := snx.Build(lc.ctx, m.resolver, extender, m.session.Transport().Host(), m.options.UseHostAsGateway)
	if err != nil {
		return 0, err
	}
	lc.result = &Result{Extender: extender, Record: record}
	return StateDone, nil
}

func (m *Machine) prompt(label string, secret bool) (string, error) {
	if m.prompter == nil {
		return "", E.New("missing ", label)
	}
	if secret {
		return m.prompter.PromptSecret(label)
	}
	return m.prompter.Prompt(label)
}

func (m *Machine) saveCookies(ctx context.Context) {
	if !m.options.SaveCookies || m.options.CookiePath == "" {
		return
	}
	err := m.session.Transport().Jar().Save(m.options.CookiePath)
	if err != nil {
		m.logger.WarnContext(ctx, E.Cause(err, "save cookies"))
		return
	}
	m.logger.DebugContext(ctx, "cookies saved to ", m.options.CookiePath)
}
