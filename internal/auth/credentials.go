package auth

// Credential is the tagged union of the three login strategies.  The
// caller chooses the shape explicitly; the authorizer never guesses a
// strategy from which fields happen to be filled in.
type Credential interface {
	credential()
}

// PasswordCredential authenticates with an identifier (mobile number or
// mail address) and a password.
type PasswordCredential struct {
	Identifier string
	Password   string
}

// CodeCredential authenticates with an identifier and the out-of-band
// verification code previously issued to it.
type CodeCredential struct {
	Identifier string
	Code       string
}

// WechatCredential authenticates with a one-time WeChat front-end code;
// the identity is resolved by the bridge, no identifier is supplied.
type WechatCredential struct {
	Code string
}

func (PasswordCredential) credential() {}
func (CodeCredential) credential()     {}
func (WechatCredential) credential()   {}
