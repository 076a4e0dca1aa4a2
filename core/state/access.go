package state

import "github.com/ethereum/go-ethereum/common"

// AccessOwner returns the registry owner, or the zero address before bootstrap.
func (m *Manager) AccessOwner() (common.Address, error) {
	var owner common.Address
	if _, err := m.KVGet(accessOwnerKeyBytes, &owner); err != nil {
		return common.Address{}, err
	}
	return owner, nil
}

// SetAccessOwner records the registry owner.
func (m *Manager) SetAccessOwner(owner common.Address) error {
	return m.KVPut(accessOwnerKeyBytes, owner)
}

// IsCreatorAuthorized reports whether addr may submit mint requests.
func (m *Manager) IsCreatorAuthorized(addr common.Address) (bool, error) {
	var authorized bool
	ok, err := m.KVGet(AccessCreatorKey(addr), &authorized)
	if err != nil || !ok {
		return false, err
	}
	return authorized, nil
}

// SetCreatorAuthorized toggles the authorization flag of addr. Revocations
// delete the entry so the set only holds authorized creators.
func (m *Manager) SetCreatorAuthorized(addr common.Address, authorized bool) error {
	if !authorized {
		return m.KVDelete(AccessCreatorKey(addr))
	}
	return m.KVPut(AccessCreatorKey(addr), true)
}
