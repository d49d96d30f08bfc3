package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/magpos/magpos/internal/magento"
	"github.com/magpos/magpos/internal/notify"
	"github.com/magpos/magpos/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle      = lipgloss.NewStyle().Faint(true)
	activeTab     = lipgloss.NewStyle().Bold(true).Reverse(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	bannerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
	outOfStock    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	cartPaneStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
)

func (a *App) View() string {
	if a.state == viewLogin {
		return a.renderLogin()
	}

	var body string
	switch a.state {
	case viewOrders:
		body = a.renderOrders()
	case viewCustomers:
		body = a.renderCustomers()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderRegister()
	}

	out := a.renderHeader() + "\n" + body
	if n := a.stores.Cart.OrderNumber(); n != "" {
		out += "\n\n" + bannerStyle.Render(okStyle.Render("Order #"+n+" placed")+"  press any key")
	}
	if notes := a.renderNotifications(); notes != "" {
		out += "\n\n" + notes
	}
	return out
}

func (a *App) renderHeader() string {
	tabs := []struct {
		key   string
		label string
		state appState
	}{
		{"1", "Register", viewRegister},
		{"2", "Orders", viewOrders},
		{"3", "Customers", viewCustomers},
		{"4", "Settings", viewSettings},
	}
	var parts []string
	for _, t := range tabs {
		label := fmt.Sprintf("[%s] %s", t.key, t.label)
		if a.state == t.state {
			parts = append(parts, activeTab.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	who := ""
	if u := a.stores.Session.User(); u.Name != "" {
		who = dimStyle.Render(u.Name + " (" + u.Role + ")")
	}
	return strings.Join(parts, " ") + "  " + who
}

func (a *App) renderLogin() string {
	title := titleStyle.Render("MagPOS Sign In")
	out := title + "\n\n"
	out += "  " + a.emailInput.View() + "\n"
	out += "  " + a.passwordInput.View() + "\n\n"
	switch {
	case a.loggingIn:
		out += dimStyle.Render("  signing in...") + "\n"
	case a.stores.Session.State() == session.StateUninitialized,
		a.stores.Session.State() == session.StateInitializing:
		out += dimStyle.Render("  restoring session...") + "\n"
	}
	if err := a.stores.Session.Err(); err != nil {
		out += errStyle.Render("  "+err.Error()) + "\n"
	}
	out += "\n" + dimStyle.Render("  [tab] switch field  [enter] sign in  [ctrl+c] quit")
	return out
}

func (a *App) renderRegister() string {
	cat := a.stores.Catalog
	crt := a.stores.Cart

	var left strings.Builder
	left.WriteString(a.renderCategoryBar() + "\n")
	if a.searching || a.searchInput.Value() != "" {
		left.WriteString("search: " + a.searchInput.View() + "\n")
	} else {
		left.WriteString(dimStyle.Render("[/] search") + "\n")
	}

	switch {
	case cat.LoadingProducts():
		left.WriteString(dimStyle.Render("loading products...") + "\n")
	case cat.ProductsErr() != nil:
		left.WriteString(errStyle.Render("could not load products: "+cat.ProductsErr().Error()) + "\n")
		left.WriteString(dimStyle.Render("[r] retry") + "\n")
	default:
		products := a.visibleProducts()
		if len(products) == 0 {
			left.WriteString(dimStyle.Render("no matching products") + "\n")
			if term := a.searchInput.Value(); term != "" {
				if sku := cat.SuggestSKU(term); sku != "" {
					left.WriteString(dimStyle.Render("did you mean "+sku+"?") + "\n")
				}
			}
		}
		for i, p := range products {
			marker := "  "
			if !a.focusCart && i == a.productCursor {
				marker = cursorStyle.Render("▶ ")
			}
			name := p.Name
			if !p.InStock() {
				name = outOfStock.Render(name)
			}
			left.WriteString(fmt.Sprintf("%s%-34s %-10s %10s\n", marker, name, p.SKU, a.money(p.Price())))
		}
	}
	if cat.CategoriesErr() != nil {
		left.WriteString(errStyle.Render("could not load categories: "+cat.CategoriesErr().Error()) + "\n")
		left.WriteString(dimStyle.Render("[r] retry") + "\n")
	}

	var right strings.Builder
	right.WriteString(titleStyle.Render("Cart") + "\n")
	switch {
	case crt.ID() == "" && crt.Err() == nil:
		right.WriteString(dimStyle.Render("starting cart...") + "\n")
	case crt.ID() == "":
		right.WriteString(errStyle.Render("no cart: "+crt.Err().Error()) + "\n")
		right.WriteString(dimStyle.Render("[r] retry") + "\n")
	case crt.Empty():
		right.WriteString(dimStyle.Render("(empty)") + "\n")
	default:
		for i, item := range crt.Items() {
			marker := "  "
			if a.focusCart && i == a.cartCursor {
				marker = cursorStyle.Render("▶ ")
			}
			right.WriteString(fmt.Sprintf("%s%-24s x%-4s %10s\n",
				marker, item.Product.Name, trimQty(item.Quantity), a.money(item.Prices.RowTotal)))
		}
		right.WriteString(fmt.Sprintf("\n%-31s %10s\n", "Total", a.money(crt.Total())))
	}
	if crt.Busy() {
		right.WriteString(dimStyle.Render("working...") + "\n")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(60).Render(left.String()),
		cartPaneStyle.Render(right.String()),
	)

	help := "[enter] add  [tab] cart  [x] remove  [C] clear  [P] place order  [[/]] category  [L] logout  [q] quit"
	return body + "\n" + dimStyle.Render(help)
}

func (a *App) renderCategoryBar() string {
	parts := []string{}
	for i := 0; i <= len(a.categoryNames); i++ {
		label := "All"
		if i > 0 {
			label = a.categoryNames[i-1]
		}
		if i == a.categoryIdx {
			parts = append(parts, activeTab.Render(" "+label+" "))
		} else {
			parts = append(parts, tabStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, "")
}

func (a *App) renderOrders() string {
	out := titleStyle.Render("Orders") + "\n"
	switch {
	case a.loadingOrders:
		out += dimStyle.Render("loading orders...") + "\n"
	case a.ordersErr != nil:
		out += errStyle.Render("could not load orders: "+a.ordersErr.Error()) + "\n"
		out += dimStyle.Render("[r] retry") + "\n"
	case len(a.orders) == 0:
		out += dimStyle.Render("no orders yet") + "\n"
	default:
		for i, o := range a.orders {
			marker := "  "
			if i == a.orderCursor {
				marker = cursorStyle.Render("▶ ")
			}
			out += fmt.Sprintf("%s#%-12s %-19s %-24s %-12s %10s\n",
				marker, o.OrderNumber, o.CreatedAt, o.CustomerFirstname+" "+o.CustomerLastname, o.Status, a.money(o.GrandTotal))
		}
		if len(a.orders) > 0 && a.orderCursor < len(a.orders) {
			out += "\n" + a.renderOrderDetail(a.orders[a.orderCursor])
		}
	}
	out += "\n" + dimStyle.Render("[r] reload  [esc] register  [q] quit")
	return out
}

func (a *App) renderOrderDetail(o magento.Order) string {
	out := dimStyle.Render("items") + "\n"
	for _, it := range o.Items {
		out += fmt.Sprintf("  %-34s %-10s x%-4s %10s\n", it.ProductName, it.ProductSKU, trimQty(it.QuantityOrdered), a.money(it.RowTotal))
	}
	out += fmt.Sprintf("  %-52s %10s\n", "subtotal", a.money(o.Total.Subtotal))
	out += fmt.Sprintf("  %-52s %10s\n", "tax", a.money(o.Total.Tax))
	out += fmt.Sprintf("  %-52s %10s\n", "total", a.money(o.Total.GrandTotal))
	if o.Payment.Method != "" {
		out += dimStyle.Render("  paid via "+o.Payment.Method) + "\n"
	}
	if s := o.ShippingAddress; s.City != "" {
		out += dimStyle.Render("  ship to "+strings.Join(s.Street, " ")+", "+s.City+" "+s.Postcode) + "\n"
	}
	return out
}

func (a *App) renderCustomers() string {
	if a.customerDetail != nil {
		return a.renderCustomerDetail()
	}
	out := titleStyle.Render("Customers") + "\n"
	if a.searchingCustomers || a.customerSearch.Value() != "" {
		out += "search: " + a.customerSearch.View() + "\n"
	} else {
		out += dimStyle.Render("[/] search") + "\n"
	}
	visible := a.visibleCustomers()
	switch {
	case a.loadingCustomers:
		out += dimStyle.Render("loading customers...") + "\n"
	case a.customersErr != nil:
		out += errStyle.Render("could not load customers: "+a.customersErr.Error()) + "\n"
		out += dimStyle.Render("[r] retry") + "\n"
	case len(visible) == 0:
		out += dimStyle.Render("no matching customers") + "\n"
	default:
		for i, c := range visible {
			marker := "  "
			if i == a.customerCursor {
				marker = cursorStyle.Render("▶ ")
			}
			out += fmt.Sprintf("%s%-28s %-32s\n", marker, c.Firstname+" "+c.Lastname, c.Email)
		}
	}
	out += "\n" + dimStyle.Render("[enter] orders  [r] reload  [esc] register  [q] quit")
	return out
}

func (a *App) renderCustomerDetail() string {
	c := a.customerDetail
	out := titleStyle.Render(c.Firstname+" "+c.Lastname) + "\n"
	out += dimStyle.Render(c.Email) + "\n"
	for _, addr := range c.Addresses {
		if !addr.DefaultShipping {
			continue
		}
		out += fmt.Sprintf("%s, %s %s\n", strings.Join(addr.Street, " "), addr.City, addr.Postcode)
	}
	out += "\n" + dimStyle.Render("orders") + "\n"
	if len(a.customerOrders) == 0 {
		out += dimStyle.Render("  none") + "\n"
	}
	for _, o := range a.customerOrders {
		out += fmt.Sprintf("  #%-12s %-19s %-12s %10s\n", o.OrderNumber, o.CreatedAt, o.Status, a.money(o.GrandTotal))
	}
	out += "\n" + dimStyle.Render("[esc] back")
	return out
}

func (a *App) renderSettings() string {
	out := titleStyle.Render("Settings") + "\n"
	editable := []struct {
		label string
		value string
	}{
		{"API endpoint", a.cfg.API.BaseURL},
		{"page size", fmt.Sprintf("%d", a.cfg.Catalog.PageSize)},
		{"currency symbol", a.cfg.UI.CurrencySymbol},
	}
	for i, f := range editable {
		marker := "  "
		if i == a.settingsCursor {
			marker = cursorStyle.Render("▶ ")
		}
		if a.editingSettings && i == a.settingsCursor {
			out += fmt.Sprintf("%s%-16s %s\n", marker, f.label, a.settingsInput.View())
			continue
		}
		out += fmt.Sprintf("%s%-16s %s\n", marker, f.label, f.value)
	}
	out += dimStyle.Render(fmt.Sprintf("  %-16s %ds", "request timeout", a.cfg.API.TimeoutSeconds)) + "\n"
	out += dimStyle.Render(fmt.Sprintf("  %-16s %s", "root category", a.cfg.Catalog.RootCategoryID)) + "\n"
	out += dimStyle.Render(fmt.Sprintf("  %-16s %s", "log file", a.cfg.Log.Path)) + "\n"
	if a.editingSettings {
		out += "\n" + dimStyle.Render("[enter] save  [esc] cancel")
		return out
	}
	out += "\n" + dimStyle.Render("[enter] edit  [L] logout  [esc] register  [q] quit")
	return out
}

func (a *App) renderNotifications() string {
	notes := a.notify.Active()
	if len(notes) == 0 {
		return ""
	}
	var out []string
	for _, n := range notes {
		switch n.Kind {
		case notify.KindError:
			out = append(out, errStyle.Render("✗ "+n.Message))
		case notify.KindSuccess:
			out = append(out, okStyle.Render("✓ "+n.Message))
		default:
			out = append(out, infoStyle.Render("• "+n.Message))
		}
	}
	return strings.Join(out, "\n")
}

// money renders a backend amount with the configured symbol, to two
// decimal places. The underlying value is whatever the backend computed.
func (a *App) money(m magento.Money) string {
	return a.cfg.UI.CurrencySymbol + m.Value.StringFixed(2)
}

func trimQty(q float64) string {
	return fmt.Sprintf("%g", q)
}
