// Package platforms stores the per-platform account configuration and
// last-observed status consulted by the health monitor and the
// engagement orchestrator.
package platforms

import "github.com/tickwright/tickctl/pkg/state"

// Account is a test probe's configuration and its last observed result.
type Account struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	HasCredentials  bool   `json:"has_credentials"`
	LastStatus      string `json:"last_status,omitempty"`
	LastCheckedUnix int64  `json:"last_checked_unix,omitempty"`
}

const doc = "platform_accounts.json"

type document struct {
	Accounts []Account `json:"accounts"`
}

type Store struct {
	store *state.Store
}

func New(store *state.Store) *Store {
	return &Store{store: store}
}

func (s *Store) load() (document, error) {
	var d document
	if _, err := s.store.Read(doc, &d); err != nil {
		return document{}, err
	}
	return d, nil
}

// List returns every configured platform account.
func (s *Store) List() ([]Account, error) {
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return d.Accounts, nil
}

// Upsert inserts or replaces the account with the given id.
func (s *Store) Upsert(account Account) error {
	d, err := s.load()
	if err != nil {
		return err
	}
	for i, a := range d.Accounts {
		if a.ID == account.ID {
			d.Accounts[i] = account
			return s.store.Write(doc, d)
		}
	}
	d.Accounts = append(d.Accounts, account)
	return s.store.Write(doc, d)
}

// LiveAndMissingCredentials splits the account list into platforms with
// credentials configured (live) and those without (missing-credential),
// the split the context builder's capability_summary section needs.
func (s *Store) LiveAndMissingCredentials() (live []string, missing []string, err error) {
	accounts, err := s.List()
	if err != nil {
		return nil, nil, err
	}
	for _, a := range accounts {
		if a.HasCredentials {
			live = append(live, a.ID)
		} else {
			missing = append(missing, a.ID)
		}
	}
	return live, missing, nil
}
