package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Create an account with a zero balance
	// (POST /accounts)
	CreateAccount(w http.ResponseWriter, r *http.Request)
	// Get an account and its balance
	// (GET /accounts/{accountId})
	GetAccount(w http.ResponseWriter, r *http.Request, accountId string)
	// List an account's notifications, newest first
	// (GET /accounts/{accountId}/notifications)
	ListNotifications(w http.ResponseWriter, r *http.Request, accountId string)
	// Mark every notification of an account as read
	// (POST /accounts/{accountId}/notifications/mark-read)
	MarkNotificationsRead(w http.ResponseWriter, r *http.Request, accountId string)
	// List an account's projects
	// (GET /accounts/{accountId}/projects)
	ListProjects(w http.ResponseWriter, r *http.Request, accountId string)
	// List an account's ledger records
	// (GET /accounts/{accountId}/transactions)
	ListAccountTransactions(w http.ResponseWriter, r *http.Request, accountId string, params ListAccountTransactionsParams)
	// Liveness and storage check
	// (GET /healthz)
	Healthz(w http.ResponseWriter, r *http.Request)
	// Start a project, charging the start fee
	// (POST /projects/start)
	StartProject(w http.ResponseWriter, r *http.Request, params StartProjectParams)
	// Get a ledger record with its effective status
	// (GET /transactions/{transactionId})
	GetTransactionById(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// Top up a wallet, crediting cashback
	// (POST /wallet/topup)
	TopUp(w http.ResponseWriter, r *http.Request, params TopUpParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is returned when a parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// TooManyValuesForParamError is returned when a single-valued header repeats.
type TooManyValuesForParamError struct {
	ParamName string
	Count     int
}

func (e *TooManyValuesForParamError) Error() string {
	return fmt.Sprintf("Expected one value for %s, got %d", e.ParamName, e.Count)
}

func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) idempotencyKey(w http.ResponseWriter, r *http.Request) (*string, bool) {
	valueList, found := r.Header[http.CanonicalHeaderKey("Idempotency-Key")]
	if !found {
		return nil, true
	}
	if n := len(valueList); n != 1 {
		siw.ErrorHandlerFunc(w, r, &TooManyValuesForParamError{ParamName: "Idempotency-Key", Count: n})
		return nil, false
	}
	var key string
	err := runtime.BindStyledParameterWithOptions("simple", "Idempotency-Key", valueList[0], &key,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: false})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "Idempotency-Key", Err: err})
		return nil, false
	}
	return &key, true
}

// CreateAccount operation middleware
func (siw *ServerInterfaceWrapper) CreateAccount(w http.ResponseWriter, r *http.Request) {
	siw.Handler.CreateAccount(w, r)
}

// GetAccount operation middleware
func (siw *ServerInterfaceWrapper) GetAccount(w http.ResponseWriter, r *http.Request) {
	var accountId string
	if !siw.pathParam(w, r, "accountId", &accountId) {
		return
	}
	siw.Handler.GetAccount(w, r, accountId)
}

// ListNotifications operation middleware
func (siw *ServerInterfaceWrapper) ListNotifications(w http.ResponseWriter, r *http.Request) {
	var accountId string
	if !siw.pathParam(w, r, "accountId", &accountId) {
		return
	}
	siw.Handler.ListNotifications(w, r, accountId)
}

// MarkNotificationsRead operation middleware
func (siw *ServerInterfaceWrapper) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	var accountId string
	if !siw.pathParam(w, r, "accountId", &accountId) {
		return
	}
	siw.Handler.MarkNotificationsRead(w, r, accountId)
}

// ListProjects operation middleware
func (siw *ServerInterfaceWrapper) ListProjects(w http.ResponseWriter, r *http.Request) {
	var accountId string
	if !siw.pathParam(w, r, "accountId", &accountId) {
		return
	}
	siw.Handler.ListProjects(w, r, accountId)
}

// ListAccountTransactions operation middleware
func (siw *ServerInterfaceWrapper) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	var accountId string
	if !siw.pathParam(w, r, "accountId", &accountId) {
		return
	}

	var params ListAccountTransactionsParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	siw.Handler.ListAccountTransactions(w, r, accountId, params)
}

// Healthz operation middleware
func (siw *ServerInterfaceWrapper) Healthz(w http.ResponseWriter, r *http.Request) {
	siw.Handler.Healthz(w, r)
}

// StartProject operation middleware
func (siw *ServerInterfaceWrapper) StartProject(w http.ResponseWriter, r *http.Request) {
	var params StartProjectParams
	key, ok := siw.idempotencyKey(w, r)
	if !ok {
		return
	}
	params.IdempotencyKey = key
	siw.Handler.StartProject(w, r, params)
}

// GetTransactionById operation middleware
func (siw *ServerInterfaceWrapper) GetTransactionById(w http.ResponseWriter, r *http.Request) {
	var transactionId openapi_types.UUID
	if !siw.pathParam(w, r, "transactionId", &transactionId) {
		return
	}
	siw.Handler.GetTransactionById(w, r, transactionId)
}

// TopUp operation middleware
func (siw *ServerInterfaceWrapper) TopUp(w http.ResponseWriter, r *http.Request) {
	var params TopUpParams
	key, ok := siw.idempotencyKey(w, r)
	if !ok {
		return
	}
	params.IdempotencyKey = key
	siw.Handler.TopUp(w, r, params)
}

// HandlerFromMux creates http.Handler with routing matching the API, mounted on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, r, nil)
}

// HandlerWithOptions mounts si on r. A nil errorHandler replies 400 with the error text.
func HandlerWithOptions(si ServerInterface, r chi.Router, errorHandler func(w http.ResponseWriter, r *http.Request, err error)) http.Handler {
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: errorHandler,
	}

	r.Post("/accounts", wrapper.CreateAccount)
	r.Get("/accounts/{accountId}", wrapper.GetAccount)
	r.Get("/accounts/{accountId}/notifications", wrapper.ListNotifications)
	r.Post("/accounts/{accountId}/notifications/mark-read", wrapper.MarkNotificationsRead)
	r.Get("/accounts/{accountId}/projects", wrapper.ListProjects)
	r.Get("/accounts/{accountId}/transactions", wrapper.ListAccountTransactions)
	r.Get("/healthz", wrapper.Healthz)
	r.Post("/projects/start", wrapper.StartProject)
	r.Get("/transactions/{transactionId}", wrapper.GetTransactionById)
	r.Post("/wallet/topup", wrapper.TopUp)

	return r
}
