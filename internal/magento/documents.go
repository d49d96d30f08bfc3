package magento

// GraphQL documents for the storefront API. Shapes follow what the backend
// serves a customer session: token issuance/revocation, the customer
// profile, the cart lifecycle, order placement, and the paginated catalog,
// customer and order listings.

const generateTokenDoc = `
mutation GenerateCustomerToken($email: String!, $password: String!) {
  generateCustomerToken(email: $email, password: $password) {
    token
  }
}`

const revokeTokenDoc = `
mutation RevokeCustomerToken {
  revokeCustomerToken {
    result
  }
}`

const customerDoc = `
query GetCustomer {
  customer {
    id
    email
    firstname
    lastname
    date_of_birth
    gender
    taxvat
    is_subscribed
    group_id
    addresses {
      id
      customer_id
      region { region_code region_id region }
      country_id
      street
      company
      telephone
      postcode
      city
      firstname
      lastname
      default_shipping
      default_billing
    }
  }
}`

const createCartDoc = `
mutation {
  createEmptyCart
}`

// cartFields is shared by every operation that returns the full cart; the
// cache is replaced wholesale with this shape after each mutation.
const cartFields = `
  id
  items {
    id
    product { name sku image { url } }
    quantity
    prices {
      price { value currency }
      row_total { value currency }
    }
  }
  prices {
    grand_total { value currency }
  }`

const getCartDoc = `
query GetCart($cartId: String!) {
  cart(cart_id: $cartId) {` + cartFields + `
  }
}`

const addToCartDoc = `
mutation AddToCart($cartId: String!, $sku: String!, $quantity: Float!) {
  addProductsToCart(cartId: $cartId, cartItems: [{ sku: $sku, quantity: $quantity }]) {
    cart {` + cartFields + `
    }
  }
}`

const removeFromCartDoc = `
mutation RemoveFromCart($cartId: String!, $itemId: Int!) {
  removeItemFromCart(input: { cart_id: $cartId, cart_item_id: $itemId }) {
    cart {` + cartFields + `
    }
  }
}`

const placeOrderDoc = `
mutation PlaceOrder($cartId: String!) {
  placeOrder(input: { cart_id: $cartId }) {
    order {
      order_number
    }
  }
}`

const productsDoc = `
query GetProducts($pageSize: Int = 20, $currentPage: Int = 1, $filters: ProductAttributeFilterInput) {
  products(pageSize: $pageSize, currentPage: $currentPage, filter: $filters) {
    items {
      id
      sku
      name
      price_range {
        minimum_price {
          regular_price { value currency }
          final_price { value currency }
        }
      }
      image { url label }
      stock_status
      type_id
      url_key
      description { html }
      short_description { html }
      categories { id name url_path }
      media_gallery { url label }
    }
    total_count
    page_info { total_pages current_page page_size }
  }
}`

const categoriesDoc = `
query GetCategories($id: String) {
  categories(filters: { parent_id: { eq: $id } }) {
    items {
      id
      name
      url_path
      url_key
      level
      children_count
      position
      include_in_menu
      children {
        id
        name
        url_path
        url_key
        level
        children_count
        position
        include_in_menu
      }
    }
  }
}`

const orderFields = `
      id
      order_number
      created_at
      grand_total { value currency }
      status
      state
      customer_email
      customer_firstname
      customer_lastname
      billing_address { firstname lastname street city region postcode country_code telephone }
      shipping_address { firstname lastname street city region postcode country_code telephone }
      items {
        id
        product_name
        product_sku
        quantity_ordered
        price { value currency }
        row_total { value currency }
      }
      payment {
        method
        amount_paid { value currency }
      }
      shipping_method
      total {
        subtotal { value currency }
        shipping { value currency }
        tax { value currency }
        grand_total { value currency }
      }`

const customersDoc = `
query GetCustomers($pageSize: Int = 20, $currentPage: Int = 1) {
  customers(pageSize: $pageSize, currentPage: $currentPage) {
    items {
      id
      email
      firstname
      lastname
      date_of_birth
      gender
      taxvat
      is_subscribed
      group_id
      created_at
      addresses {
        id
        customer_id
        region { region_code region_id region }
        country_id
        street
        company
        telephone
        postcode
        city
        firstname
        lastname
        default_shipping
        default_billing
      }
    }
    total_count
    page_info { total_pages current_page page_size }
  }
}`

const ordersDoc = `
query GetOrders($pageSize: Int = 20, $currentPage: Int = 1) {
  orders(pageSize: $pageSize, currentPage: $currentPage) {
    items {` + orderFields + `
    }
    total_count
    page_info { total_pages current_page page_size }
  }
}`

const customerOrdersDoc = `
query GetCustomerOrders($customerId: Int!, $pageSize: Int = 20, $currentPage: Int = 1) {
  customer(id: $customerId) {
    id
    email
    firstname
    lastname
    orders(pageSize: $pageSize, currentPage: $currentPage) {
      items {` + orderFields + `
      }
      total_count
      page_info { total_pages current_page page_size }
    }
  }
}`
