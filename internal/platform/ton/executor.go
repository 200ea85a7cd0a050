package ton

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/jetton"
	"github.com/xssnick/tonutils-go/ton/wallet"

	claimmodels "slot-game-backend/internal/features/claim/models"
	gamemodels "slot-game-backend/internal/features/game/models"
)

// gasAmount is attached to every jetton transfer to cover forwarding fees.
var gasAmount = tlb.MustFromTON("0.05")

// Executor pays out prizes as jetton transfers from the prize wallet.
type Executor struct {
	api    ton.APIClientWrapped
	wallet *wallet.Wallet
	prizes map[string]gamemodels.Prize
}

// NewExecutor connects to the network from the global config URL and opens
// the prize wallet from its mnemonic. An empty seed yields a disabled
// executor whose claims fail with a configuration error.
func NewExecutor(ctx context.Context, configURL, seed string, prizes []gamemodels.Prize) (*Executor, error) {
	byName := make(map[string]gamemodels.Prize, len(prizes))
	for _, p := range prizes {
		byName[p.Name] = p
	}

	if seed == "" {
		log.Warn().Msg("prize wallet seed not set, payouts disabled")
		return &Executor{prizes: byName}, nil
	}

	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configURL); err != nil {
		return nil, fmt.Errorf("liteclient config: %w", err)
	}
	api := ton.NewAPIClient(pool, ton.ProofCheckPolicyFast).WithRetry()

	w, err := wallet.FromSeed(api, strings.Fields(seed), wallet.V4R2)
	if err != nil {
		return nil, fmt.Errorf("open prize wallet: %w", err)
	}
	log.Info().Str("address", w.WalletAddress().String()).Msg("prize wallet opened")

	return &Executor{api: api, wallet: w, prizes: byName}, nil
}

// Execute transfers the prize's token amount to toAddress and returns the
// transaction hash.
func (e *Executor) Execute(ctx context.Context, prizeName, toAddress string) (string, *claimmodels.ExecutionError) {
	if e.wallet == nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindUnconfigured, Detail: "prize wallet not configured"}
	}

	prize, ok := e.prizes[prizeName]
	if !ok {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindInvalidPrize, Detail: "unknown prize: " + prizeName}
	}
	if prize.Token == "" {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindInvalidPrize, Detail: "prize has no token configured: " + prizeName}
	}

	to, err := address.ParseAddr(toAddress)
	if err != nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindInvalidAddress, Detail: err.Error()}
	}
	masterAddr, err := address.ParseAddr(prize.Token)
	if err != nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindInvalidPrize, Detail: "bad token address: " + err.Error()}
	}

	block, err := e.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindEstimationFailed, Detail: "masterchain info: " + err.Error()}
	}

	tonBalance, err := e.wallet.GetBalance(ctx, block)
	if err != nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindEstimationFailed, Detail: "wallet balance: " + err.Error()}
	}
	if tonBalance.Nano().Cmp(gasAmount.Nano()) < 0 {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindInsufficientGasFunds, Detail: "prize wallet TON balance below gas reserve"}
	}

	master := jetton.NewJettonMasterClient(e.api, masterAddr)
	tokenWallet, err := master.GetJettonWallet(ctx, e.wallet.WalletAddress())
	if err != nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindEstimationFailed, Detail: "resolve jetton wallet: " + err.Error()}
	}

	amount := big.NewInt(prize.Amount)
	jettonBalance, err := tokenWallet.GetBalance(ctx)
	if err != nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindEstimationFailed, Detail: "jetton balance: " + err.Error()}
	}
	if jettonBalance.Cmp(amount) < 0 {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindInsufficientContractBalance, Detail: "prize pool balance too low for " + prizeName}
	}

	amountCoins, err := tlb.FromNano(amount, prize.Decimals)
	if err != nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindEstimationFailed, Detail: "amount encoding: " + err.Error()}
	}

	comment, err := wallet.CreateCommentCell("Slot game prize: " + prizeName)
	if err != nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindEstimationFailed, Detail: "comment cell: " + err.Error()}
	}

	payload, err := tokenWallet.BuildTransferPayloadV2(to, e.wallet.WalletAddress(), amountCoins, tlb.ZeroCoins, comment, nil)
	if err != nil {
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindEstimationFailed, Detail: "transfer payload: " + err.Error()}
	}

	msg := wallet.SimpleMessage(tokenWallet.Address(), gasAmount, payload)
	tx, _, err := e.wallet.SendWaitTransaction(ctx, msg)
	if err != nil {
		if ctx.Err() != nil {
			return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindUnexpected, Detail: "transfer timed out: " + err.Error()}
		}
		return "", &claimmodels.ExecutionError{Kind: claimmodels.ErrKindTransactionReverted, Detail: err.Error()}
	}

	txHash := base64.StdEncoding.EncodeToString(tx.Hash)
	log.Info().Str("prize", prizeName).Str("to", to.String()).Str("tx_hash", txHash).
		Msg("prize transfer sent")
	return txHash, nil
}
