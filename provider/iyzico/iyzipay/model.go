package iyzipay

// Request and response shapes for the iyzico Checkout Form API

const (
	LocaleTR = "tr"
	LocaleEN = "en"

	CurrencyTRY = "TRY"

	PaymentGroupProduct = "PRODUCT"

	BasketItemTypePhysical = "PHYSICAL"
	BasketItemTypeVirtual  = "VIRTUAL"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Buyer is the paying customer
type Buyer struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	GsmNumber           string `json:"gsmNumber,omitempty"`
	Email               string `json:"email"`
	IdentityNumber      string `json:"identityNumber"`
	RegistrationAddress string `json:"registrationAddress"`
	IP                  string `json:"ip"`
	City                string `json:"city"`
	Country             string `json:"country"`
	ZipCode             string `json:"zipCode,omitempty"`
}

// Address is a shipping or billing address
type Address struct {
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode,omitempty"`
}

// BasketItem is one basket line; Price is the line total
type BasketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	Category2 string `json:"category2,omitempty"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

// CheckoutFormInitializeRequest starts a hosted checkout form session
type CheckoutFormInitializeRequest struct {
	Locale              string       `json:"locale"`
	ConversationID      string       `json:"conversationId"`
	Price               string       `json:"price"`
	PaidPrice           string       `json:"paidPrice"`
	Currency            string       `json:"currency"`
	BasketID            string       `json:"basketId"`
	PaymentGroup        string       `json:"paymentGroup"`
	CallbackURL         string       `json:"callbackUrl"`
	EnabledInstallments []int        `json:"enabledInstallments,omitempty"`
	Buyer               Buyer        `json:"buyer"`
	ShippingAddress     Address      `json:"shippingAddress"`
	BillingAddress      Address      `json:"billingAddress"`
	BasketItems         []BasketItem `json:"basketItems"`
}

// CheckoutFormInitializeResponse carries the embeddable form on success
type CheckoutFormInitializeResponse struct {
	Status              string `json:"status"`
	ErrorCode           string `json:"errorCode,omitempty"`
	ErrorMessage        string `json:"errorMessage,omitempty"`
	ErrorGroup          string `json:"errorGroup,omitempty"`
	Locale              string `json:"locale,omitempty"`
	SystemTime          int64  `json:"systemTime,omitempty"`
	ConversationID      string `json:"conversationId,omitempty"`
	Token               string `json:"token,omitempty"`
	CheckoutFormContent string `json:"checkoutFormContent,omitempty"`
	TokenExpireTime     int    `json:"tokenExpireTime,omitempty"`
	PaymentPageURL      string `json:"paymentPageUrl,omitempty"`
}
