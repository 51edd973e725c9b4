package services

// StoreKey namespaces a persisted value by purpose, server and user. Backends
// must keep the three parts apart; never flatten them with a delimiter.
type StoreKey struct {
	Prefix string
	Server string
	User   string
}

// LegacyString is the flat "prefix:server:user" form. It is ambiguous when the
// server URL or the user name contains ':' and is only kept for migration.
func (k StoreKey) LegacyString() string {
	return k.Prefix + ":" + k.Server + ":" + k.User
}

type KVStore interface {
	Get(key StoreKey) (value string, ok bool, err error)
	Set(key StoreKey, value string) error
	Delete(key StoreKey) error
}
