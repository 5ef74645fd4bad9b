package printer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const (
	TypeKitchen = "kitchen"
	TypeReceipt = "receipt"

	Width58mm = 32
	Width80mm = 48

	timeLayout = "02/01/2006 15:04"
)

type Formatter struct {
	Width    int
	Currency string
}

func NewFormatter(width int, currency string) *Formatter {
	if width != Width80mm {
		width = Width58mm
	}
	return &Formatter{Width: width, Currency: currency}
}

// Render returns the text of the requested ticket type and its printed title.
func (f *Formatter) Render(kind string, r models.Restaurant, o models.Order) (title, body string, err error) {
	switch kind {
	case TypeKitchen:
		return "CUISINE", f.Kitchen(r, o), nil
	case TypeReceipt:
		return r.Name, f.Receipt(r, o), nil
	}
	return "", "", fmt.Errorf("type de ticket inconnu: %q", kind)
}

// Kitchen renders the cook ticket. It never shows prices.
func (f *Formatter) Kitchen(r models.Restaurant, o models.Order) string {
	var b strings.Builder
	f.center(&b, r.Name)
	f.rule(&b, '=')
	f.field(&b, "Commande", o.OrderNumber)
	f.field(&b, "Heure", o.CreatedAt.Format(timeLayout))
	if o.ClientName != "" {
		f.field(&b, "Client", o.ClientName)
	}
	f.rule(&b, '-')
	for _, item := range o.Items {
		f.wrapped(&b, fmt.Sprintf("%d x %s", item.Quantity, item.Name), "")
		if item.Notes != "" {
			f.wrapped(&b, "> "+item.Notes, "   ")
		}
	}
	f.rule(&b, '-')
	if o.Notes != "" {
		f.wrapped(&b, "Note: "+o.Notes, "")
	}
	return b.String()
}

// Receipt renders the customer receipt. Prices include tax; the tax share
// is computed back from the restaurant rate.
func (f *Formatter) Receipt(r models.Restaurant, o models.Order) string {
	var b strings.Builder
	if r.Address != "" {
		f.center(&b, r.Address)
	}
	if r.Phone != "" {
		f.center(&b, "Tel: "+r.Phone)
	}
	f.rule(&b, '=')
	f.field(&b, "Recu No", o.OrderNumber)
	f.field(&b, "Date", o.CreatedAt.Format(timeLayout))
	if o.CaissierName != "" {
		f.field(&b, "Caissier", o.CaissierName)
	}
	if o.ClientName != "" {
		f.field(&b, "Client", o.ClientName)
	}
	f.rule(&b, '-')
	for _, item := range o.Items {
		f.wrapped(&b, item.Name, "")
		qty := fmt.Sprintf("  %d x %s", item.Quantity, utils.FormatAmount(item.UnitPrice))
		f.columns(&b, qty, utils.FormatAmount(item.Subtotal))
	}
	f.rule(&b, '-')

	total := decimal.NewFromFloat(o.TotalAmount)
	f.columns(&b, "TOTAL", utils.FormatCurrency(o.TotalAmount, f.Currency))
	if r.TaxRate > 0 {
		rate := decimal.NewFromFloat(r.TaxRate)
		net := total.Div(decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100)))).Round(2)
		tax := total.Sub(net)
		f.columns(&b, "Total HT", utils.FormatAmount(net.InexactFloat64()))
		f.columns(&b, "TVA "+rate.String()+"%", utils.FormatAmount(tax.InexactFloat64()))
	}
	f.rule(&b, '=')
	f.center(&b, "Merci de votre visite !")
	return b.String()
}

func (f *Formatter) rule(b *strings.Builder, ch rune) {
	b.WriteString(strings.Repeat(string(ch), f.Width))
	b.WriteByte('\n')
}

func (f *Formatter) center(b *strings.Builder, s string) {
	s = truncate(s, f.Width)
	pad := (f.Width - utf8.RuneCountInString(s)) / 2
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(s)
	b.WriteByte('\n')
}

func (f *Formatter) field(b *strings.Builder, label, value string) {
	f.wrapped(b, fmt.Sprintf("%-9s %s", label+":", value), "")
}

// columns left-aligns left and right-aligns right on one line, falling back
// to two lines when both do not fit.
func (f *Formatter) columns(b *strings.Builder, left, right string) {
	gap := f.Width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		f.wrapped(b, left, "")
		b.WriteString(strings.Repeat(" ", max(0, f.Width-utf8.RuneCountInString(right))))
		b.WriteString(truncate(right, f.Width))
		b.WriteByte('\n')
		return
	}
	b.WriteString(left)
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(right)
	b.WriteByte('\n')
}

// wrapped breaks s on spaces so that no line exceeds the ticket width.
func (f *Formatter) wrapped(b *strings.Builder, s, indent string) {
	line := indent
	for _, word := range strings.Fields(s) {
		word = truncate(word, f.Width-utf8.RuneCountInString(indent))
		candidate := word
		if strings.TrimSpace(line) != "" {
			candidate = line + " " + word
		} else {
			candidate = indent + word
		}
		if utf8.RuneCountInString(candidate) > f.Width {
			b.WriteString(line)
			b.WriteByte('\n')
			line = indent + word
			continue
		}
		line = candidate
	}
	if strings.TrimSpace(line) != "" {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}
