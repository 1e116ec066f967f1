package local

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/client/repositories/kv"
	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/dmitrijs2005/citywatch/internal/cryptox"
)

const AccountsKey = "accounts"

// Demo account available on every device in local mode.
const (
	DemoUserID = "1"
	DemoEmail  = "demo@example.com"
	DemoSecret = "password123"
	DemoName   = "Demo User"
)

// Directory keeps accounts on the device. The demo account is fixed and
// never written to the store; signups are appended under AccountsKey.
type Directory struct {
	store kv.Store
	demo  models.Account
	now   func() time.Time
	newID func() (string, error)
}

func NewDirectory(store kv.Store) *Directory {
	return &Directory{
		store: store,
		demo: models.Account{
			User: models.User{
				ID:    DemoUserID,
				Email: DemoEmail,
				Name:  DemoName,
			},
			SecretHash: cryptox.HashSecret([]byte(DemoSecret)),
		},
		now:   time.Now,
		newID: newV7,
	}
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if email == d.demo.Email {
		acc := d.demo
		return &acc, nil
	}

	raw, err := d.store.Get(ctx, AccountsKey)
	if err != nil {
		return nil, err
	}
	accounts, err := decodeAccounts(raw)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		if acc.Email == email {
			return &acc, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (d *Directory) Register(ctx context.Context, email, name, secretHash string) (*models.User, error) {
	if email == d.demo.Email {
		return nil, fmt.Errorf("%w: email %s", common.ErrConflict, email)
	}

	id, err := d.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	acc := models.Account{
		User:       models.User{ID: id, Email: email, Name: name},
		SecretHash: secretHash,
	}

	err = d.store.Update(ctx, AccountsKey, func(current []byte) ([]byte, error) {
		accounts, err := decodeAccounts(current)
		if err != nil {
			return nil, err
		}
		for _, existing := range accounts {
			if existing.Email == email {
				return nil, fmt.Errorf("%w: email %s", common.ErrConflict, email)
			}
		}
		acc.CreatedAt = d.now().UTC()
		return json.Marshal(append(accounts, acc))
	})
	if err != nil {
		return nil, err
	}

	u := acc.User
	return &u, nil
}

func decodeAccounts(raw []byte) ([]models.Account, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var accounts []models.Account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("%w: malformed %s record: %w", common.ErrBackendUnavailable, AccountsKey, err)
	}
	return accounts, nil
}
