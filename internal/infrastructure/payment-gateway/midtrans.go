package paymentgateway

import (
	"fmt"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"

	"github.com/lumakart/fulfillment-service/config"
	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/pkg/utils"
)

// ChargeResult is what the engine keeps from a provider charge: a stable
// reference the buyer pays against (QR URL, VA number, redirect URL) and
// the provider-side deadline.
type ChargeResult struct {
	Reference string
	ExpiredAt int64
}

// Provider creates payment instruments at the external payment provider.
// Confirmation comes back asynchronously through the webhook; the engine
// never polls the provider for it.
type Provider interface {
	Charge(orderID string, method string, amount float64) (ChargeResult, error)
}

func CreateMidtransClient(config *config.Config) *coreapi.Client {
	midtrans.ServerKey = config.MidtransConfig.ServerKey
	midtrans.Environment = midtrans.Sandbox // Use midtrans.Production for production

	midtransClient := &coreapi.Client{}
	midtransClient.New(midtrans.ServerKey, midtrans.Environment)

	return midtransClient
}

type MidtransProvider struct {
	client *coreapi.Client
}

func CreateMidtransProvider(client *coreapi.Client) Provider {
	return &MidtransProvider{client: client}
}

func (p *MidtransProvider) Charge(orderID string, method string, amount float64) (result ChargeResult, err error) {
	window := domain.PaymentWindow(method)

	chargeReq := &coreapi.ChargeReq{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: int64(amount),
		},
		CustomExpiry: &coreapi.CustomExpiry{
			ExpiryDuration: int(window.Minutes()),
			Unit:           "minute",
		},
	}

	switch method {
	case domain.MethodQRIS:
		chargeReq.PaymentType = coreapi.PaymentTypeQris
	case domain.MethodVirtualAccount:
		chargeReq.PaymentType = coreapi.PaymentTypeBankTransfer
		chargeReq.BankTransfer = &coreapi.BankTransferDetails{
			Bank: midtrans.BankBca,
		}
	case domain.MethodEWallet:
		chargeReq.PaymentType = coreapi.PaymentTypeGopay
	default:
		return result, fmt.Errorf("unsupported payment method: %s", method)
	}

	response, chargeErr := p.client.ChargeTransaction(chargeReq)
	if chargeErr != nil {
		return result, chargeErr
	}

	if response.StatusCode != "201" {
		return result, fmt.Errorf("payment gateway returned non-201 status: %s", response.StatusCode)
	}

	result.Reference = extractReference(method, response)

	if response.ExpiryTime != "" {
		result.ExpiredAt, err = utils.ConvertDateTimeWibToUnixTimestamp(response.ExpiryTime)
		if err != nil {
			return result, err
		}
	} else {
		result.ExpiredAt = time.Now().Add(window).Unix()
	}

	return result, nil
}

func extractReference(method string, response *coreapi.ChargeResponse) string {
	switch method {
	case domain.MethodQRIS:
		for _, action := range response.Actions {
			if action.Name == "generate-qr-code" {
				return action.URL
			}
		}
	case domain.MethodVirtualAccount:
		if len(response.VaNumbers) > 0 {
			return response.VaNumbers[0].VANumber
		}
	case domain.MethodEWallet:
		for _, action := range response.Actions {
			if action.Name == "deeplink-redirect" {
				return action.URL
			}
		}
	}

	return response.TransactionID
}
