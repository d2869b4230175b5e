package notifier

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/aleister1102/feedwatch/internal/common"
)

// ErrRecipientKeyNotFound means the keyring has no key for a recipient.
var ErrRecipientKeyNotFound = errors.New("no PGP key for recipient")

// PGPService encrypts text for recipients in a public keyring.
type PGPService struct {
	keyring openpgp.EntityList
}

// LoadPGPService reads an armored public keyring.
func LoadPGPService(path string) (*PGPService, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, common.WrapError(err, "failed to parse keyring "+path)
	}
	if len(keyring) == 0 {
		return nil, common.NewValidationError("pgp_public_key_file", path, "keyring contains no keys")
	}
	return NewPGPService(keyring), nil
}

// NewPGPService wraps an already parsed keyring.
func NewPGPService(keyring openpgp.EntityList) *PGPService {
	return &PGPService{keyring: keyring}
}

// EncryptString returns input as an armored PGP message readable by every recipient.
func (s *PGPService) EncryptString(input string, recipients ...string) (string, error) {
	if len(recipients) == 0 {
		return "", common.NewValidationError("recipients", recipients, "at least one recipient is required")
	}

	to := make([]*openpgp.Entity, 0, len(recipients))
	for _, r := range recipients {
		entity := s.findEntity(r)
		if entity == nil {
			return "", common.WrapErrorf(ErrRecipientKeyNotFound, "recipient %s", r)
		}
		to = append(to, entity)
	}

	var buf bytes.Buffer
	armored, err := armor.Encode(&buf, "PGP MESSAGE", nil)
	if err != nil {
		return "", common.WrapError(err, "failed to start armor encoding")
	}
	plaintext, err := openpgp.Encrypt(armored, to, nil, nil, nil)
	if err != nil {
		return "", common.WrapError(err, "failed to start encryption")
	}
	if _, err := plaintext.Write([]byte(input)); err != nil {
		return "", common.WrapError(err, "failed to encrypt")
	}
	if err := plaintext.Close(); err != nil {
		return "", common.WrapError(err, "failed to finish encryption")
	}
	if err := armored.Close(); err != nil {
		return "", common.WrapError(err, "failed to finish armor encoding")
	}
	return buf.String(), nil
}

func (s *PGPService) findEntity(recipient string) *openpgp.Entity {
	for _, entity := range s.keyring {
		for _, identity := range entity.Identities {
			if identity.UserId != nil && strings.EqualFold(identity.UserId.Email, recipient) {
				return entity
			}
		}
	}
	return nil
}

// PGPNotifier encrypts message bodies before handing them to the next notifier.
type PGPNotifier struct {
	next       Notifier
	pgp        *PGPService
	recipients []string
}

// NewPGPNotifier wraps next.
func NewPGPNotifier(next Notifier, pgp *PGPService, recipients []string) *PGPNotifier {
	return &PGPNotifier{next: next, pgp: pgp, recipients: recipients}
}

// SendEmail encrypts bodyHTML and sends the armored text in a <pre> block.
// Nothing is sent when encryption fails.
func (n *PGPNotifier) SendEmail(ctx context.Context, subject, bodyHTML string) error {
	encrypted, err := n.pgp.EncryptString(bodyHTML, n.recipients...)
	if err != nil {
		return err
	}
	return n.next.SendEmail(ctx, subject, Pre(encrypted))
}
