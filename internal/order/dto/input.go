package dto

import "github.com/fekuna/omnipos-cartridge/internal/model"

type SetupInput struct {
	Billing                model.Address
	Shipping               model.Address
	AdditionalInstructions string
	UserID                 *string
}
