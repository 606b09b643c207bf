package auth

import (
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
)

// PasetoToken gates the admin reporting endpoints. The symmetric key comes
// from configuration so tokens survive process restarts; with no key
// configured a random one is generated and tokens are valid for this process
// only.
type PasetoToken struct {
	parser *paseto.Parser
	key    *paseto.V4SymmetricKey
}

func New(hexKey string) (port.TokenService, error) {
	parser := paseto.NewParser()

	var key paseto.V4SymmetricKey
	if hexKey == "" {
		key = paseto.NewV4SymmetricKey()
	} else {
		var err error
		key, err = paseto.V4SymmetricKeyFromHex(hexKey)
		if err != nil {
			return nil, domain.ErrTokenCreation
		}
	}

	s := PasetoToken{
		parser: &parser,
		key:    &key,
	}

	return &s, nil
}

func (p *PasetoToken) CreateToken(subject string) (string, error) {
	token := paseto.NewToken()
	token.SetExpiration(time.Now().Add(24 * time.Hour))

	payload := port.TokenPayload{Subject: subject}
	err := token.Set("payload", payload)
	if err != nil {
		return "", domain.ErrTokenCreation
	}

	return token.V4Encrypt(*p.key, nil), nil
}

func (p *PasetoToken) VerifyToken(token string) (*port.TokenPayload, error) {
	parsed, err := p.parser.ParseV4Local(*p.key, token, nil)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	var payload port.TokenPayload
	err = parsed.Get("payload", &payload)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	return &payload, nil
}
