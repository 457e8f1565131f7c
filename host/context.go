package host

import (
	"encoding/hex"

	"github.com/wippyai/contract-sdk/val"
)

// Context is the distinguished invocation context passed as the first
// parameter of contract functions. It is host-supplied and never part of a
// function's external call signature.
type Context struct {
	host     *Host
	contract val.Address
}

// Env returns the value-exchange boundary for the current invocation.
func (c *Context) Env() val.Env {
	return c.host
}

// CurrentContract returns the address of the executing contract.
func (c *Context) CurrentContract() val.Address {
	return c.contract
}

// CurrentContractVal returns the executing contract's address as a value.
func (c *Context) CurrentContractVal() (val.Val, error) {
	return val.NewAddress(c.host, c.contract)
}

// Storage returns the executing contract's persistent storage.
func (c *Context) Storage() *Storage {
	return c.host.StorageFor(c.contract)
}

// PublishEvent appends an event with the given topics and data payload to
// the host's event log.
func (c *Context) PublishEvent(topics []val.Val, data val.Val) error {
	return c.host.publishEvent(c.contract, topics, data)
}

// Invoke calls a function of another contract by name.
func (c *Context) Invoke(contract val.Val, fn string, args []val.Val) (val.Val, error) {
	sym, err := val.NewSymbol(c.host, fn)
	if err != nil {
		return val.Void(), err
	}
	return c.host.Invoke(contract, sym, args)
}

// Deployer returns a deployer that derives new contract addresses from the
// currently executing contract.
func (c *Context) Deployer() *Deployer {
	return &Deployer{host: c.host, from: c.contract}
}

func addrShort(a val.Address) string {
	return hex.EncodeToString(a[:4])
}
