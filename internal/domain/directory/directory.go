// Package directory resolves app identities shared by every machine of an
// account.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
)

// IDPrefix starts every identity issued by HashDirectory
const IDPrefix = "app-"

// HashDirectory derives an identity from the account and the binary name, so
// the same binary added on two machines of one account is the same app. The
// install path itself does not take part.
type HashDirectory struct {
	account    string
	identifier *utils.AppIdentifier

	mu      sync.RWMutex
	aliases map[string]types.AppIdentity
}

// New creates a directory for the given account
func New(account string, algorithm utils.HashAlgorithm) (*HashDirectory, error) {
	if err := utils.ValidateString(account, "account", 1, utils.MaxNameLength, true); err != nil {
		return nil, err
	}
	return &HashDirectory{
		account:    account,
		identifier: utils.NewAppIdentifier(utils.NewHasher(algorithm)),
		aliases:    make(map[string]types.AppIdentity),
	}, nil
}

// Account returns the account namespace
func (d *HashDirectory) Account() string {
	return d.account
}

// ResolveIdentity implements apphandler.NetworkDirectory
func (d *HashDirectory) ResolveIdentity(ctx context.Context, detail types.AppDetail) (types.AppIdentity, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := utils.ValidateAbsolutePath(detail.AbsolutePath, "absolute_path"); err != nil {
		return "", err
	}

	name := utils.BinaryName(detail.AbsolutePath)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("cannot derive a binary name from %q", detail.AbsolutePath)
	}

	d.mu.RLock()
	alias, ok := d.aliases[name]
	d.mu.RUnlock()
	if ok {
		return alias, nil
	}

	return d.Identity(name), nil
}

// Identity is the identity of a binary name in this account
func (d *HashDirectory) Identity(binaryName string) types.AppIdentity {
	full := d.identifier.GenerateHash(d.account, binaryName)
	return types.AppIdentity(IDPrefix + d.identifier.GenerateShortHash(full))
}

// Alias makes binaryName resolve to an existing identity, for apps whose
// binary is named differently across platforms.
func (d *HashDirectory) Alias(binaryName string, target types.AppIdentity) error {
	if binaryName == "" {
		return errors.New("binary name is required")
	}
	if err := utils.ValidateID(target.String(), "target", true); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.aliases[binaryName] = target
	return nil
}
