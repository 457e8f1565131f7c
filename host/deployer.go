package host

import (
	"crypto/sha256"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/val"
)

// Deployer deploys contracts whose addresses derive deterministically from
// the deploying address and a salt, so the deployed address is known before
// the contract exists.
type Deployer struct {
	host *Host
	from val.Address
}

// NewDeployer returns a deployer acting on behalf of the given address.
func NewDeployer(h *Host, from val.Address) *Deployer {
	return &Deployer{host: h, from: from}
}

// WithSalt fixes the salt and therefore the derived address.
func (d *Deployer) WithSalt(salt [32]byte) *DeployerWithAddress {
	return &DeployerWithAddress{
		host:    d.host,
		address: deriveAddress(d.from, salt),
	}
}

// DeployerWithAddress is a deployer bound to a derived address.
type DeployerWithAddress struct {
	host    *Host
	address val.Address
}

// DeployedAddress returns the derived address. It is available before
// Deploy and never changes.
func (d *DeployerWithAddress) DeployedAddress() val.Address {
	return d.address
}

// Deploy registers the contract functions at the derived address.
func (d *DeployerWithAddress) Deploy(fns map[string]Func) (val.Address, error) {
	if err := d.host.Register(d.address, fns); err != nil {
		return val.Address{}, errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "deploy")
	}
	return d.address, nil
}

func deriveAddress(from val.Address, salt [32]byte) val.Address {
	h := sha256.New()
	h.Write(from[:])
	h.Write(salt[:])
	var a val.Address
	copy(a[:], h.Sum(nil))
	return a
}
