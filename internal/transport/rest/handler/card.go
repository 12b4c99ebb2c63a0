package handler

import (
	"net/http"

	"codeduel/internal/service"
)

// CardHandler serves the card catalog
type CardHandler struct {
	cardSvc *service.CardService
}

func NewCardHandler(cardSvc *service.CardService) *CardHandler {
	return &CardHandler{cardSvc: cardSvc}
}

// List handles GET /v1/cards
// @Summary List every playable card
// @Produce json
// @Success 200 {array} model.Card
// @Router /cards [get]
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cardSvc.Catalog())
}
