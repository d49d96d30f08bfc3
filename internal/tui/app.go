package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/magpos/magpos/internal/cart"
	"github.com/magpos/magpos/internal/catalog"
	"github.com/magpos/magpos/internal/config"
	"github.com/magpos/magpos/internal/magento"
	"github.com/magpos/magpos/internal/notify"
	"github.com/magpos/magpos/internal/session"
)

// App ties the stores to the terminal. All store mutation happens inside
// Update; commands only do network IO and report back as messages.
type App struct {
	ctx    context.Context
	cfg    config.Config
	stores Stores
	notify *notify.Queue
	log    zerolog.Logger

	state appState

	// login
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int
	loggingIn     bool

	// register
	searchInput   textinput.Model
	searching     bool
	productCursor int
	cartCursor    int
	focusCart     bool
	categoryIdx   int // 0 = all
	categoryNames []string

	// orders
	orders        []magento.Order
	ordersErr     error
	orderCursor   int
	loadingOrders bool

	// customers
	customers          []magento.Customer
	customersErr       error
	customerCursor     int
	loadingCustomers   bool
	customerDetail     *magento.Customer
	customerOrders     []magento.Order
	customerSearch     textinput.Model
	searchingCustomers bool

	// settings
	settingsCursor  int
	editingSettings bool
	settingsInput   textinput.Model

	width  int
	height int
}

type Stores struct {
	Session *session.Store
	Catalog *catalog.Store
	Cart    *cart.Store
}

type appState string

// directory tabs page smaller than the register's catalog load
const directoryPageSize = 20

const (
	viewLogin     appState = "login"
	viewRegister  appState = "register"
	viewOrders    appState = "orders"
	viewCustomers appState = "customers"
	viewSettings  appState = "settings"
)

func New(ctx context.Context, cfg config.Config, stores Stores, q *notify.Queue, log zerolog.Logger) *App {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	search := textinput.New()
	search.Placeholder = "name or SKU"
	search.CharLimit = 64

	custSearch := textinput.New()
	custSearch.Placeholder = "name or email"
	custSearch.CharLimit = 64

	setting := textinput.New()
	setting.CharLimit = 128

	return &App{
		ctx:            ctx,
		cfg:            cfg,
		stores:         stores,
		notify:         q,
		log:            log.With().Str("component", "tui").Logger(),
		state:          viewLogin,
		emailInput:     email,
		passwordInput:  password,
		searchInput:    search,
		customerSearch: custSearch,
		settingsInput:  setting,
	}
}

func (a *App) Init() tea.Cmd {
	a.stores.Session.BeginInit()
	return tea.Batch(a.restoreCmd(), textinput.Blink)
}

// commands

func (a *App) restoreCmd() tea.Cmd {
	return func() tea.Msg {
		sess, ok := a.stores.Session.Restore(a.ctx)
		return restoredMsg{sess: sess, ok: ok}
	}
}

func (a *App) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := a.stores.Session.Login(a.ctx, email, password)
		return loggedInMsg{sess: sess, err: err}
	}
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		a.stores.Session.Logout(a.ctx)
		return loggedOutMsg{}
	}
}

func (a *App) loadProductsCmd() tea.Cmd {
	return func() tea.Msg {
		page, err := a.stores.Catalog.FetchProducts(a.ctx, a.cfg.Catalog.PageSize, 1)
		return productsMsg{page: page, err: err}
	}
}

func (a *App) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		cats, err := a.stores.Catalog.FetchCategories(a.ctx, a.cfg.Catalog.RootCategoryID)
		return categoriesMsg{cats: cats, err: err}
	}
}

func (a *App) createCartCmd() tea.Cmd {
	return func() tea.Msg {
		id, err := a.stores.Cart.Create(a.ctx)
		return cartCreatedMsg{id: id, err: err}
	}
}

func (a *App) fetchCartCmd(cartID string) tea.Cmd {
	return func() tea.Msg {
		c, err := a.stores.Cart.Fetch(a.ctx, cartID)
		return cartMsg{cart: c, err: err}
	}
}

func (a *App) addItemCmd(cartID, sku string, quantity float64) tea.Cmd {
	return func() tea.Msg {
		c, err := a.stores.Cart.Add(a.ctx, cartID, sku, quantity)
		return cartMutatedMsg{cart: c, err: err, action: "add " + sku}
	}
}

func (a *App) removeItemCmd(cartID string, itemID int, sku string) tea.Cmd {
	return func() tea.Msg {
		c, err := a.stores.Cart.Remove(a.ctx, cartID, itemID, sku)
		return cartMutatedMsg{cart: c, err: err, action: "remove " + sku}
	}
}

func (a *App) clearCartCmd(cartID string, items []magento.CartItem) tea.Cmd {
	return func() tea.Msg {
		c, err := a.stores.Cart.ClearAll(a.ctx, cartID, items)
		return cartMutatedMsg{cart: c, err: err, action: "clear cart"}
	}
}

func (a *App) placeOrderCmd(cartID string, itemCount int) tea.Cmd {
	return func() tea.Msg {
		number, err := a.stores.Cart.Place(a.ctx, cartID, itemCount)
		return orderPlacedMsg{number: number, err: err}
	}
}

func (a *App) loadOrdersCmd() tea.Cmd {
	return func() tea.Msg {
		page, err := a.stores.Catalog.FetchOrders(a.ctx, directoryPageSize, 1)
		return ordersMsg{page: page, err: err}
	}
}

func (a *App) loadCustomersCmd() tea.Cmd {
	return func() tea.Msg {
		page, err := a.stores.Catalog.FetchCustomers(a.ctx, directoryPageSize, 1)
		return customersMsg{page: page, err: err}
	}
}

func (a *App) loadCustomerOrdersCmd(customerID int) tea.Cmd {
	return func() tea.Msg {
		cust, page, err := a.stores.Catalog.FetchCustomerOrders(a.ctx, customerID, directoryPageSize, 1)
		return customerOrdersMsg{customer: cust, page: page, err: err}
	}
}

// afterAuthCmd kicks off the loads every signed-in session needs: the
// product mirror, the category tree and a fresh server-side cart.
func (a *App) afterAuthCmd() tea.Cmd {
	a.stores.Catalog.BeginProducts()
	a.stores.Catalog.BeginCategories()
	return tea.Batch(a.loadProductsCmd(), a.loadCategoriesCmd(), a.createCartCmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(m)

	case notifyChangedMsg:
		return a, nil

	case restoredMsg:
		a.stores.Session.ApplyRestore(m.sess, m.ok)
		if m.ok {
			a.state = viewRegister
			return a, a.afterAuthCmd()
		}
		a.state = viewLogin
		return a, nil

	case loggedInMsg:
		a.loggingIn = false
		a.stores.Session.ApplyLogin(m.sess, m.err)
		if m.err != nil {
			a.passwordInput.SetValue("")
			a.focusLogin(0)
			return a, nil
		}
		a.state = viewRegister
		return a, a.afterAuthCmd()

	case loggedOutMsg:
		a.stores.Session.ApplyLogout()
		a.stores.Catalog.Clear()
		a.stores.Cart.Reset()
		a.resetRegister()
		a.emailInput.SetValue("")
		a.passwordInput.SetValue("")
		a.focusLogin(0)
		a.state = viewLogin
		return a, nil

	case productsMsg:
		a.stores.Catalog.ApplyProducts(m.page, m.err)
		if a.productCursor >= len(a.visibleProducts()) {
			a.productCursor = 0
		}
		return a, nil

	case categoriesMsg:
		a.stores.Catalog.ApplyCategories(m.cats, m.err)
		if m.err == nil {
			a.categoryNames = flattenCategories(m.cats)
			if a.categoryIdx > len(a.categoryNames) {
				a.categoryIdx = 0
			}
		}
		return a, nil

	case cartCreatedMsg:
		a.stores.Cart.ApplyCreate(m.id, m.err)
		if m.err != nil {
			a.notify.Show(notify.KindError, "could not start a cart: "+m.err.Error(), 0)
			return a, nil
		}
		return a, a.fetchCartCmd(m.id)

	case cartMsg:
		a.stores.Cart.ApplyCart(m.cart, m.err)
		a.clampCartCursor()
		return a, nil

	case cartMutatedMsg:
		a.stores.Cart.ApplyCart(m.cart, m.err)
		a.clampCartCursor()
		if m.err != nil {
			a.notify.Show(notify.KindError, "could not "+m.action+": "+m.err.Error(), 0)
		}
		return a, nil

	case orderPlacedMsg:
		a.stores.Cart.ApplyOrder(m.number, m.err)
		if m.err != nil {
			a.notify.Show(notify.KindError, "order failed: "+m.err.Error(), 0)
			return a, nil
		}
		a.notify.Show(notify.KindSuccess, "order #"+m.number+" placed", 0)
		a.cartCursor = 0
		a.focusCart = false
		return a, a.createCartCmd()

	case ordersMsg:
		a.loadingOrders = false
		a.ordersErr = m.err
		if m.err == nil {
			a.orders = m.page.Items
			if a.orderCursor >= len(a.orders) {
				a.orderCursor = 0
			}
		}
		return a, nil

	case customersMsg:
		a.loadingCustomers = false
		a.customersErr = m.err
		if m.err == nil {
			a.customers = m.page.Items
			if a.customerCursor >= len(a.customers) {
				a.customerCursor = 0
			}
		}
		return a, nil

	case customerOrdersMsg:
		a.loadingCustomers = false
		if m.err != nil {
			a.notify.Show(notify.KindError, "could not load customer orders: "+m.err.Error(), 0)
			return a, nil
		}
		cust := m.customer
		a.customerDetail = &cust
		a.customerOrders = m.page.Items
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.state == viewLogin {
		return a.handleLoginKey(m)
	}

	// an order confirmation swallows the next keypress
	if a.stores.Cart.OrderNumber() != "" {
		a.stores.Cart.ClearOrderNumber()
		return a, nil
	}

	if a.searching {
		return a.handleSearchKey(m)
	}
	if a.searchingCustomers {
		return a.handleCustomerSearchKey(m)
	}
	if a.editingSettings {
		return a.handleSettingsInputKey(m)
	}

	switch m.String() {
	case "q":
		return a, tea.Quit
	case "1":
		a.state = viewRegister
		return a, nil
	case "2":
		a.state = viewOrders
		a.loadingOrders = true
		a.ordersErr = nil
		return a, a.loadOrdersCmd()
	case "3":
		a.state = viewCustomers
		a.customerDetail = nil
		a.loadingCustomers = true
		a.customersErr = nil
		return a, a.loadCustomersCmd()
	case "4":
		a.state = viewSettings
		return a, nil
	case "L":
		return a, a.logoutCmd()
	}

	switch a.state {
	case viewRegister:
		return a.handleRegisterKey(m)
	case viewOrders:
		return a.handleOrdersKey(m)
	case viewCustomers:
		return a.handleCustomersKey(m)
	case viewSettings:
		return a.handleSettingsKey(m)
	}
	return a, nil
}

func (a *App) handleLoginKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "tab", "shift+tab":
		a.focusLogin(1 - a.loginFocus)
		return a, nil
	case "enter":
		if a.loginFocus == 0 {
			a.focusLogin(1)
			return a, nil
		}
		if a.loggingIn {
			return a, nil
		}
		email := strings.TrimSpace(a.emailInput.Value())
		password := a.passwordInput.Value()
		a.stores.Session.ClearErr()
		a.loggingIn = true
		return a, a.loginCmd(email, password)
	}

	var cmd tea.Cmd
	if a.loginFocus == 0 {
		a.emailInput, cmd = a.emailInput.Update(m)
	} else {
		a.passwordInput, cmd = a.passwordInput.Update(m)
	}
	return a, cmd
}

func (a *App) focusLogin(i int) {
	a.loginFocus = i
	if i == 0 {
		a.emailInput.Focus()
		a.passwordInput.Blur()
	} else {
		a.emailInput.Blur()
		a.passwordInput.Focus()
	}
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.searching = false
		a.searchInput.Blur()
		a.searchInput.SetValue("")
		a.productCursor = 0
		return a, nil
	case "enter":
		a.searching = false
		a.searchInput.Blur()
		a.productCursor = 0
		return a, nil
	}
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(m)
	a.productCursor = 0
	return a, cmd
}

func (a *App) handleRegisterKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	cartStore := a.stores.Cart
	switch m.String() {
	case "/":
		a.searching = true
		a.focusCart = false
		return a, a.searchInput.Focus()
	case "esc":
		if a.searchInput.Value() != "" {
			a.searchInput.SetValue("")
			a.productCursor = 0
		}
		return a, nil
	case "tab":
		a.focusCart = !a.focusCart
		return a, nil
	case "[", "left":
		if a.categoryIdx > 0 {
			a.categoryIdx--
		} else {
			a.categoryIdx = len(a.categoryNames)
		}
		a.productCursor = 0
		return a, nil
	case "]", "right":
		if a.categoryIdx < len(a.categoryNames) {
			a.categoryIdx++
		} else {
			a.categoryIdx = 0
		}
		a.productCursor = 0
		return a, nil
	case "up", "k":
		if a.focusCart {
			if a.cartCursor > 0 {
				a.cartCursor--
			}
		} else if a.productCursor > 0 {
			a.productCursor--
		}
		return a, nil
	case "down", "j":
		if a.focusCart {
			if a.cartCursor < len(cartStore.Items())-1 {
				a.cartCursor++
			}
		} else if a.productCursor < len(a.visibleProducts())-1 {
			a.productCursor++
		}
		return a, nil
	case "r":
		// retry only what failed; the cart is created once per session
		// and a live one must never be replaced
		var cmds []tea.Cmd
		if a.stores.Catalog.ProductsErr() != nil {
			a.stores.Catalog.BeginProducts()
			cmds = append(cmds, a.loadProductsCmd())
		}
		if a.stores.Catalog.CategoriesErr() != nil {
			a.stores.Catalog.BeginCategories()
			cmds = append(cmds, a.loadCategoriesCmd())
		}
		if cartStore.ID() == "" {
			cmds = append(cmds, a.createCartCmd())
		}
		if len(cmds) == 0 {
			return a, nil
		}
		return a, tea.Batch(cmds...)
	case "enter", "a":
		if a.focusCart || cartStore.Busy() || cartStore.ID() == "" {
			return a, nil
		}
		products := a.visibleProducts()
		if len(products) == 0 || a.productCursor >= len(products) {
			return a, nil
		}
		p := products[a.productCursor]
		cartStore.Begin()
		return a, a.addItemCmd(cartStore.ID(), p.SKU, 1)
	case "x", "backspace", "delete":
		if !a.focusCart || cartStore.Busy() {
			return a, nil
		}
		items := cartStore.Items()
		if len(items) == 0 || a.cartCursor >= len(items) {
			return a, nil
		}
		item := items[a.cartCursor]
		cartStore.Begin()
		return a, a.removeItemCmd(cartStore.ID(), item.NumericID(), item.Product.SKU)
	case "C":
		if cartStore.Busy() || cartStore.Empty() {
			return a, nil
		}
		items := append([]magento.CartItem(nil), cartStore.Items()...)
		cartStore.Begin()
		return a, a.clearCartCmd(cartStore.ID(), items)
	case "P":
		if cartStore.Busy() {
			return a, nil
		}
		if cartStore.Empty() {
			a.notify.Show(notify.KindError, "cart is empty", 0)
			return a, nil
		}
		cartStore.Begin()
		return a, a.placeOrderCmd(cartStore.ID(), cartStore.ItemCount())
	}
	return a, nil
}

func (a *App) handleOrdersKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if a.orderCursor > 0 {
			a.orderCursor--
		}
	case "down", "j":
		if a.orderCursor < len(a.orders)-1 {
			a.orderCursor++
		}
	case "r":
		a.loadingOrders = true
		a.ordersErr = nil
		return a, a.loadOrdersCmd()
	case "esc":
		a.state = viewRegister
	}
	return a, nil
}

func (a *App) handleCustomersKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.customerDetail != nil {
		switch m.String() {
		case "esc", "backspace":
			a.customerDetail = nil
			a.customerOrders = nil
		}
		return a, nil
	}
	visible := a.visibleCustomers()
	switch m.String() {
	case "/":
		a.searchingCustomers = true
		return a, a.customerSearch.Focus()
	case "up", "k":
		if a.customerCursor > 0 {
			a.customerCursor--
		}
	case "down", "j":
		if a.customerCursor < len(visible)-1 {
			a.customerCursor++
		}
	case "enter":
		if len(visible) == 0 || a.customerCursor >= len(visible) {
			return a, nil
		}
		a.loadingCustomers = true
		return a, a.loadCustomerOrdersCmd(visible[a.customerCursor].ID)
	case "r":
		a.loadingCustomers = true
		a.customersErr = nil
		return a, a.loadCustomersCmd()
	case "esc":
		if a.customerSearch.Value() != "" {
			a.customerSearch.SetValue("")
			a.customerCursor = 0
			return a, nil
		}
		a.state = viewRegister
	}
	return a, nil
}

func (a *App) handleCustomerSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.searchingCustomers = false
		a.customerSearch.Blur()
		a.customerSearch.SetValue("")
		a.customerCursor = 0
		return a, nil
	case "enter":
		a.searchingCustomers = false
		a.customerSearch.Blur()
		a.customerCursor = 0
		return a, nil
	}
	var cmd tea.Cmd
	a.customerSearch, cmd = a.customerSearch.Update(m)
	a.customerCursor = 0
	return a, cmd
}

// visibleCustomers applies the directory search: case-insensitive substring
// on name or email.
func (a *App) visibleCustomers() []magento.Customer {
	term := strings.ToLower(strings.TrimSpace(a.customerSearch.Value()))
	if term == "" {
		return a.customers
	}
	out := make([]magento.Customer, 0, len(a.customers))
	for _, c := range a.customers {
		name := strings.ToLower(c.Firstname + " " + c.Lastname)
		if strings.Contains(name, term) || strings.Contains(strings.ToLower(c.Email), term) {
			out = append(out, c)
		}
	}
	return out
}

// settings fields editable in place, in render order
const (
	settingBaseURL = iota
	settingPageSize
	settingCurrency
	settingCount
)

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if a.settingsCursor > 0 {
			a.settingsCursor--
		}
	case "down", "j":
		if a.settingsCursor < settingCount-1 {
			a.settingsCursor++
		}
	case "enter", "e":
		a.editingSettings = true
		switch a.settingsCursor {
		case settingBaseURL:
			a.settingsInput.SetValue(a.cfg.API.BaseURL)
		case settingPageSize:
			a.settingsInput.SetValue(strconv.Itoa(a.cfg.Catalog.PageSize))
		case settingCurrency:
			a.settingsInput.SetValue(a.cfg.UI.CurrencySymbol)
		}
		return a, a.settingsInput.Focus()
	case "esc":
		a.state = viewRegister
	}
	return a, nil
}

func (a *App) handleSettingsInputKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.editingSettings = false
		a.settingsInput.Blur()
		return a, nil
	case "enter":
		a.editingSettings = false
		a.settingsInput.Blur()
		value := strings.TrimSpace(a.settingsInput.Value())
		if value == "" {
			return a, nil
		}
		switch a.settingsCursor {
		case settingBaseURL:
			a.cfg.API.BaseURL = value
		case settingPageSize:
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				a.notify.Show(notify.KindError, "page size must be a positive number", 0)
				return a, nil
			}
			a.cfg.Catalog.PageSize = n
		case settingCurrency:
			a.cfg.UI.CurrencySymbol = value
		}
		if err := config.Save(a.cfg); err != nil {
			a.notify.Show(notify.KindError, "could not save config: "+err.Error(), 0)
			return a, nil
		}
		if a.settingsCursor == settingBaseURL {
			a.notify.Show(notify.KindSuccess, "settings saved (restart to apply endpoint)", 0)
		} else {
			a.notify.Show(notify.KindSuccess, "settings saved", 0)
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.settingsInput, cmd = a.settingsInput.Update(m)
	return a, cmd
}

func (a *App) resetRegister() {
	a.searching = false
	a.searchInput.SetValue("")
	a.searchInput.Blur()
	a.productCursor = 0
	a.cartCursor = 0
	a.focusCart = false
	a.categoryIdx = 0
	a.categoryNames = nil
	a.orders = nil
	a.ordersErr = nil
	a.orderCursor = 0
	a.customers = nil
	a.customersErr = nil
	a.customerCursor = 0
	a.customerDetail = nil
	a.customerOrders = nil
	a.customerSearch.SetValue("")
	a.searchingCustomers = false
	a.settingsCursor = 0
	a.editingSettings = false
}

func (a *App) activeCategory() string {
	if a.categoryIdx == 0 || a.categoryIdx > len(a.categoryNames) {
		return ""
	}
	return a.categoryNames[a.categoryIdx-1]
}

func (a *App) visibleProducts() []magento.Product {
	return a.stores.Catalog.Filtered(a.searchInput.Value(), a.activeCategory())
}

func (a *App) clampCartCursor() {
	if n := len(a.stores.Cart.Items()); a.cartCursor >= n {
		if n == 0 {
			a.cartCursor = 0
			a.focusCart = false
		} else {
			a.cartCursor = n - 1
		}
	}
}

func flattenCategories(cats []magento.Category) []string {
	var names []string
	for _, c := range cats {
		names = append(names, c.Name)
		for _, child := range c.Children {
			names = append(names, child.Name)
		}
	}
	return names
}

// messages

type restoredMsg struct {
	sess session.Session
	ok   bool
}

type loggedInMsg struct {
	sess session.Session
	err  error
}

type loggedOutMsg struct{}

type productsMsg struct {
	page magento.ProductPage
	err  error
}

type categoriesMsg struct {
	cats []magento.Category
	err  error
}

type cartCreatedMsg struct {
	id  string
	err error
}

type cartMsg struct {
	cart magento.Cart
	err  error
}

type cartMutatedMsg struct {
	cart   magento.Cart
	err    error
	action string
}

type orderPlacedMsg struct {
	number string
	err    error
}

type ordersMsg struct {
	page magento.OrderPage
	err  error
}

type customersMsg struct {
	page magento.CustomerPage
	err  error
}

type customerOrdersMsg struct {
	customer magento.Customer
	page     magento.OrderPage
	err      error
}

// NotifyChanged is sent by the program whenever a notification is shown or
// expires, so the view refreshes without a keypress.
func NotifyChanged() tea.Msg { return notifyChangedMsg{} }

type notifyChangedMsg struct{}
