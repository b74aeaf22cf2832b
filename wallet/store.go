package wallet

import (
	"os"
	"strings"
)

// SaveWallet 保存钱包（WIF）
func SaveWallet(path string, w *Wallet) error {
	return os.WriteFile(path, []byte(w.ExportWIF()), 0600)
}

// LoadWallet 加载钱包
func LoadWallet(path string) (*Wallet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ImportWIF(strings.TrimSpace(string(raw)))
}
