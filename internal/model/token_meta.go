package model

// TokenMeta captures ERC20 metadata of one side of a pair.
type TokenMeta struct {
	Address  string `json:"address" yaml:"address"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
	Symbol   string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
}
