package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/ports"
	"github.com/seu-repo/voice-banking/internal/service/nlu"
)

// BankingHandler exposes each banking operation as POST /intent/<operation>.
type BankingHandler struct {
	service ports.BankingService
	log     *zap.Logger
}

func NewBankingHandler(service ports.BankingService, log *zap.Logger) *BankingHandler {
	return &BankingHandler{
		service: service,
		log:     log,
	}
}

func (h *BankingHandler) RegisterRoutes(router fiber.Router) {
	intent := router.Group("/intent")
	intent.Post("/"+nlu.OpBalancesGet, h.Balances)
	intent.Post("/"+nlu.OpCustomerLookup, h.LookupCustomer)
	intent.Post("/"+nlu.OpTransactionsFilter, h.FilterTransactions)
	intent.Post("/"+nlu.OpCardUpdate, h.UpdateCard)
	intent.Post("/"+nlu.OpContactUpdate, h.UpdateContact)
	intent.Post("/"+nlu.OpSavingsOpen, h.OpenSavings)
	intent.Post("/"+nlu.OpAppointmentCreate, h.CreateAppointment)
}

// serve decodes the request strictly, runs op and writes its result. Errors
// are left to the application error handler.
func serve[Req any, Resp any](c *fiber.Ctx, op func(context.Context, Req) (Resp, error)) error {
	var req Req
	if err := decodeStrict(c.Body(), &req); err != nil {
		return err
	}
	resp, err := op(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *BankingHandler) Balances(c *fiber.Ctx) error {
	return serve[domain.BalanceRequest](c, h.service.GetBalances)
}

func (h *BankingHandler) LookupCustomer(c *fiber.Ctx) error {
	return serve[domain.CustomerLookupRequest](c, h.service.LookupCustomer)
}

func (h *BankingHandler) FilterTransactions(c *fiber.Ctx) error {
	return serve[domain.TransactionsFilterRequest](c, h.service.FilterTransactions)
}

func (h *BankingHandler) UpdateCard(c *fiber.Ctx) error {
	return serve[domain.CardUpdateRequest](c, h.service.UpdateCard)
}

func (h *BankingHandler) UpdateContact(c *fiber.Ctx) error {
	return serve[domain.ContactUpdateRequest](c, h.service.UpdateContact)
}

func (h *BankingHandler) OpenSavings(c *fiber.Ctx) error {
	return serve[domain.SavingsOpenRequest](c, h.service.OpenSavings)
}

func (h *BankingHandler) CreateAppointment(c *fiber.Ctx) error {
	return serve[domain.AppointmentCreateRequest](c, h.service.CreateAppointment)
}
