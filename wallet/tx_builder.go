package wallet

import (
	"errors"
	"math"

	"utxosig/blockchain"
)

// ErrInsufficientFunds 候选输出不够支付金额
var ErrInsufficientFunds = errors.New("insufficient funds")

// SelectOutputs 从候选输出里按顺序选钱，直到金额足够
func SelectOutputs(owned []blockchain.TxOutput,
	amount uint64) ([]blockchain.TxOutput, uint64, error) {

	var (
		selected []blockchain.TxOutput
		total    uint64
	)
	for _, out := range owned {
		if total > math.MaxUint64-out.Value {
			return nil, 0, ErrInsufficientFunds
		}

		selected = append(selected, out)
		total += out.Value
		if total >= amount {
			return selected, total, nil
		}
	}

	return nil, 0, ErrInsufficientFunds
}

// BuildTransaction 构造交易：付款给 to，剩余找零给 change
// 候选输出由调用方提供，不查账本
func BuildTransaction(owned []blockchain.TxOutput, to blockchain.SpendingKey,
	amount uint64, change blockchain.SpendingKey) (*blockchain.Transaction,
	error) {

	if amount == 0 {
		return nil, errors.New("amount must be positive")
	}

	// 1️⃣ 选输出
	spent, total, err := SelectOutputs(owned, amount)
	if err != nil {
		return nil, err
	}

	// 2️⃣ 构造 inputs
	inputs := make([]blockchain.TxInput, 0, len(spent))
	for _, out := range spent {
		inputs = append(inputs, blockchain.TxInput{Prev: out})
	}

	// 3️⃣ 构造 outputs
	outputs := []blockchain.TxOutput{{Value: amount, SpendingKey: to}}

	// 4️⃣ 找零
	if rest := total - amount; rest > 0 {
		outputs = append(outputs, blockchain.TxOutput{
			Value:       rest,
			SpendingKey: change,
		})
	}

	log.Debugf("Built tx spending %d input(s), total=%d amount=%d",
		len(inputs), total, amount)

	return blockchain.NewTransaction(inputs, outputs), nil
}

// Send 只用自己的输出，找零回自己
func (w *Wallet) Send(candidates []blockchain.TxOutput,
	to blockchain.SpendingKey, amount uint64) (*blockchain.Transaction,
	error) {

	var owned []blockchain.TxOutput
	for _, out := range candidates {
		if w.Owns(out) {
			owned = append(owned, out)
		}
	}

	return BuildTransaction(owned, to, amount, w.PublicKey)
}
