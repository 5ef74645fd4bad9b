package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/printer"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const (
	formatText   = "text"
	formatESCPOS = "escpos"
)

// ReceiptController renders kitchen tickets and receipts and sends them
// to the restaurant printer.
type ReceiptController struct {
	Orders      *services.OrderService
	Restaurants *services.RestaurantService
	Formatter   *printer.Formatter
	Printer     *printer.Dispatcher
}

func NewReceiptController(orders *services.OrderService, restaurants *services.RestaurantService, formatter *printer.Formatter, dispatcher *printer.Dispatcher) *ReceiptController {
	return &ReceiptController{Orders: orders, Restaurants: restaurants, Formatter: formatter, Printer: dispatcher}
}

func (rc *ReceiptController) load(c *gin.Context) (*models.Restaurant, *models.Order, error) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return nil, nil, err
	}
	order, err := rc.Orders.Get(c.Request.Context(), middlewares.CurrentActor(c), id)
	if err != nil {
		return nil, nil, err
	}
	restaurant, err := rc.Restaurants.Get(c.Request.Context(), order.RestaurantID)
	if err != nil {
		return nil, nil, err
	}
	return restaurant, order, nil
}

func (rc *ReceiptController) render(kind string, restaurant *models.Restaurant, order *models.Order) (string, string, error) {
	if kind == "" {
		kind = printer.TypeKitchen
	}
	title, body, err := rc.Formatter.Render(kind, *restaurant, *order)
	if err != nil {
		return "", "", utils.BadRequest(err.Error())
	}
	return title, body, nil
}

// GetTicket returns the ticket as plain text or as the ESC/POS byte stream
// the browser forwards to a USB printer.
func (rc *ReceiptController) GetTicket(c *gin.Context) {
	restaurant, order, err := rc.load(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	kind := c.DefaultQuery("type", printer.TypeKitchen)
	title, body, err := rc.render(kind, restaurant, order)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	switch c.DefaultQuery("format", formatText) {
	case formatText:
		c.String(http.StatusOK, "%s\n%s", title, body)
	case formatESCPOS:
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.bin"`, order.OrderNumber, kind))
		c.Data(http.StatusOK, "application/octet-stream", printer.Frame(title, body))
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("format de ticket inconnu"))
	}
}

// PrintTicket sends the ticket to the network printer of the restaurant.
func (rc *ReceiptController) PrintTicket(c *gin.Context) {
	var req struct {
		Type string `json:"type"`
	}
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	restaurant, order, err := rc.load(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	title, body, err := rc.render(req.Type, restaurant, order)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	err = rc.Printer.Print(c.Request.Context(), restaurant.PrinterAddr, printer.Frame(title, body))
	if errors.Is(err, printer.ErrNoPrinter) {
		utils.RespondFailure(c, utils.Conflict(err.Error()))
		return
	}
	if err != nil {
		utils.RespondFailure(c, &utils.AppError{Code: http.StatusInternalServerError, Message: "Imprimante injoignable", Err: err})
		return
	}
	utils.InfoLogger.WithField("order_id", order.ID).Infof("ticket sent to %s", restaurant.PrinterAddr)
	utils.RespondJSON(c, http.StatusOK, "Ticket envoyé à l'imprimante", nil)
}

// PrinterStatus reports whether the restaurant printer answers.
func (rc *ReceiptController) PrinterStatus(c *gin.Context) {
	tenant, err := tenantOf(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	restaurant, err := rc.Restaurants.Get(c.Request.Context(), tenant)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	status := gin.H{
		"printer_addr": restaurant.PrinterAddr,
		"configured":   restaurant.PrinterAddr != "",
		"online":       false,
	}
	if restaurant.PrinterAddr != "" {
		if err := rc.Printer.Probe(c.Request.Context(), restaurant.PrinterAddr); err != nil {
			status["error"] = err.Error()
		} else {
			status["online"] = true
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Statut de l'imprimante", status)
}
