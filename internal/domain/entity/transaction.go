package entity

import "time"

// TransactionDirection describes a native transfer relative to the wallet.
type TransactionDirection string

const (
	DirectionReceive  TransactionDirection = "Receive"
	DirectionSend     TransactionDirection = "Send"
	DirectionTransfer TransactionDirection = "Transfer"
)

// Transaction is one normalized native transaction of a wallet.
type Transaction struct {
	Hash      string               `json:"hash"`
	Timestamp time.Time            `json:"timestamp"`
	Date      string               `json:"date"`
	Time      string               `json:"time"`
	Type      TransactionDirection `json:"type"`
	Amount    string               `json:"amount"`
	Asset     string               `json:"asset"`
	Network   string               `json:"network"`
	Status    string               `json:"status"`
	TxType    string               `json:"txType"`
}
