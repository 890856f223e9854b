package dto

import (
	orderdto "github.com/fekuna/omnipos-cartridge/internal/order/dto"
	"github.com/fekuna/omnipos-cartridge/internal/payment"
)

type ProcessInput struct {
	orderdto.SetupInput
	Card payment.CardDetails
}
