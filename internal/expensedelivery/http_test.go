package expensedelivery

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/internal/integrationtest/helpers"
	"github.com/go-divvy/divvy/internal/middleware"
	"github.com/go-divvy/divvy/pkg/errorspkg"
	"github.com/go-divvy/divvy/pkg/moneypkg"
	"github.com/go-divvy/divvy/pkg/randompkg"
	"github.com/go-divvy/divvy/pkg/tokenpkg"
	"github.com/go-divvy/divvy/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func registerCategoryValidator(t *testing.T) {
	t.Helper()

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("category", ValidCategory); err != nil {
			t.Fatalf("registering category validator returned error: %v", err)
		}
	}
}

func TestCreate(t *testing.T) {
	user := helpers.RandomUser()
	other := helpers.RandomUser()
	group := helpers.RandomGroup(user, other)
	expense := helpers.RandomExpense(group, user.ID)
	tokenSymmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	registerCategoryValidator(t)

	authType := middleware.AuthTypeBearer
	duration := time.Minute

	createArg := domain.CreateExpenseParams{
		GroupID:      group.ID,
		Description:  expense.Description,
		Amount:       expense.Amount,
		PaidBy:       user.ID,
		SplitType:    domain.SplitEqual,
		Participants: expense.Participants,
	}

	shareErr := &domain.ShareMismatchError{
		Expected: expense.Amount,
		Actual:   moneypkg.MustParse("0.01"),
	}

	type requestBody struct {
		GroupID      int64                    `json:"group_id,omitempty"`
		Description  string                   `json:"description,omitempty"`
		Category     string                   `json:"category,omitempty"`
		Amount       moneypkg.Money           `json:"amount,omitempty"`
		PaidBy       int64                    `json:"paid_by,omitempty"`
		SplitType    string                   `json:"split_type,omitempty"`
		Participants []int64                  `json:"participants,omitempty"`
		Shares       map[int64]moneypkg.Money `json:"shares,omitempty"`
	}

	okBody := requestBody{
		GroupID:      group.ID,
		Description:  expense.Description,
		Amount:       expense.Amount,
		PaidBy:       user.ID,
		SplitType:    "equal",
		Participants: expense.Participants,
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(expenseService *MockService)
		wantStatusCode int
		wantError      string
		checkData      func(data any)
	}{
		{
			name:        "OK",
			requestBody: okBody,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(createArg)).
					Times(1).
					Return(expense, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(data any) {
				got, ok := data.(*struct {
					Expense domain.Expense `json:"expense"`
				})
				if !ok {
					t.Errorf(`res.Data=%v, failed type conversion`, data)
				}

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(expense, got.Expense, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:        "NoAuthorization",
			requestBody: okBody,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name: "MissingDescription",
			requestBody: requestBody{
				GroupID:      group.ID,
				Amount:       expense.Amount,
				PaidBy:       user.ID,
				SplitType:    "equal",
				Participants: expense.Participants,
			},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Description is required",
		},
		{
			name: "MissingAmount",
			requestBody: requestBody{
				GroupID:      group.ID,
				Description:  expense.Description,
				PaidBy:       user.ID,
				SplitType:    "equal",
				Participants: expense.Participants,
			},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount is required",
		},
		{
			name: "UnknownCategory",
			requestBody: requestBody{
				GroupID:      group.ID,
				Description:  expense.Description,
				Category:     "gadgets",
				Amount:       expense.Amount,
				PaidBy:       user.ID,
				SplitType:    "equal",
				Participants: expense.Participants,
			},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Category must be a known expense category",
		},
		{
			name: "UnknownSplitType",
			requestBody: requestBody{
				GroupID:      group.ID,
				Description:  expense.Description,
				Amount:       expense.Amount,
				PaidBy:       user.ID,
				SplitType:    "percent",
				Participants: expense.Participants,
			},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "SplitType must be one of equal custom",
		},
		{
			name:        "UnknownParticipant",
			requestBody: okBody,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(createArg)).
					Times(1).
					Return(domain.Expense{}, domain.ErrUnknownParticipant)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrUnknownParticipant.Error(),
		},
		{
			name:        "ShareMismatch",
			requestBody: okBody,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(createArg)).
					Times(1).
					Return(domain.Expense{}, shareErr)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      shareErr.Error(),
		},
		{
			name:        "GroupNotFound",
			requestBody: okBody,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(createArg)).
					Times(1).
					Return(domain.Expense{}, domain.ErrGroupNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrGroupNotFound.Error(),
		},
		{
			name:        "NotGroupMember",
			requestBody: okBody,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(createArg)).
					Times(1).
					Return(domain.Expense{}, domain.ErrNotGroupMember)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrNotGroupMember.Error(),
		},
		{
			name:        "InternalError",
			requestBody: okBody,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Create(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(createArg)).
					Times(1).
					Return(domain.Expense{}, sql.ErrConnDone)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			expenseService := NewMockService(ctrl)
			expenseHandler := NewHandler(expenseService)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.POST("/expenses", expenseHandler.Create)

			tc.buildStubs(expenseService)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, "/expenses", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					Expense domain.Expense `json:"expense"`
				}{},
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else {
				tc.checkData(res.Data)
			}
		})
	}
}

func TestGet(t *testing.T) {
	user := helpers.RandomUser()
	other := helpers.RandomUser()
	group := helpers.RandomGroup(user, other)
	expense := helpers.RandomExpense(group, user.ID)
	tokenSymmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	authType := middleware.AuthTypeBearer
	duration := time.Minute

	testCases := []struct {
		name           string
		expenseID      int64
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(expenseService *MockService)
		wantStatusCode int
		wantError      string
		checkData      func(data any)
	}{
		{
			name:      "OK",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(expense.ID)).
					Times(1).
					Return(expense, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(data any) {
				got, ok := data.(*struct {
					Expense domain.Expense `json:"expense"`
				})
				if !ok {
					t.Errorf(`res.Data=%v, failed type conversion`, data)
				}

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(expense, got.Expense, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:      "NoAuthorization",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name:      "InvalidID",
			expenseID: -1,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID must be at least 1",
		},
		{
			name:      "ExpenseNotFound",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(expense.ID)).
					Times(1).
					Return(domain.Expense{}, domain.ErrExpenseNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrExpenseNotFound.Error(),
		},
		{
			name:      "NotGroupMember",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(expense.ID)).
					Times(1).
					Return(domain.Expense{}, domain.ErrNotGroupMember)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrNotGroupMember.Error(),
		},
		{
			name:      "InternalError",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Get(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(expense.ID)).
					Times(1).
					Return(domain.Expense{}, sql.ErrConnDone)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			expenseService := NewMockService(ctrl)
			expenseHandler := NewHandler(expenseService)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.GET("/expenses/:id", expenseHandler.Get)

			tc.buildStubs(expenseService)

			url := fmt.Sprintf("/expenses/%d", tc.expenseID)
			req, err := http.NewRequest(http.MethodGet, url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					Expense domain.Expense `json:"expense"`
				}{},
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else {
				tc.checkData(res.Data)
			}
		})
	}
}

func TestList(t *testing.T) {
	user := helpers.RandomUser()
	other := helpers.RandomUser()
	group := helpers.RandomGroup(user, other)
	expenses := []domain.Expense{
		helpers.RandomExpense(group, user.ID),
		helpers.RandomExpense(group, other.ID),
	}
	tokenSymmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	registerCategoryValidator(t)

	authType := middleware.AuthTypeBearer
	duration := time.Minute

	testCases := []struct {
		name           string
		url            string
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(expenseService *MockService)
		wantStatusCode int
		wantError      string
		checkData      func(data any)
	}{
		{
			name: "OK",
			url:  fmt.Sprintf("/expenses?group_id=%d", group.ID),
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				arg := domain.ListExpensesParams{GroupID: group.ID}

				expenseService.EXPECT().
					List(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(arg)).
					Times(1).
					Return(expenses, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(data any) {
				got, ok := data.(*struct {
					Expenses []domain.Expense `json:"expenses"`
				})
				if !ok {
					t.Errorf(`res.Data=%v, failed type conversion`, data)
				}

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(expenses, got.Expenses, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "OKWithFilters",
			url:  fmt.Sprintf("/expenses?group_id=%d&search=dinner&category=food&limit=10&offset=5", group.ID),
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				arg := domain.ListExpensesParams{
					GroupID:  group.ID,
					Search:   "dinner",
					Category: domain.CategoryFood,
					Limit:    10,
					Offset:   5,
				}

				expenseService.EXPECT().
					List(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(arg)).
					Times(1).
					Return(expenses, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(data any) {
				got, ok := data.(*struct {
					Expenses []domain.Expense `json:"expenses"`
				})
				if !ok {
					t.Errorf(`res.Data=%v, failed type conversion`, data)
				}

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(expenses, got.Expenses, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "NoAuthorization",
			url:  fmt.Sprintf("/expenses?group_id=%d", group.ID),
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					List(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name: "MissingGroupID",
			url:  "/expenses",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					List(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "GroupID is required",
		},
		{
			name: "UnknownCategory",
			url:  fmt.Sprintf("/expenses?group_id=%d&category=gadgets", group.ID),
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					List(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Category must be a known expense category",
		},
		{
			name: "NotGroupMember",
			url:  fmt.Sprintf("/expenses?group_id=%d", group.ID),
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				arg := domain.ListExpensesParams{GroupID: group.ID}

				expenseService.EXPECT().
					List(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(arg)).
					Times(1).
					Return(nil, domain.ErrNotGroupMember)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrNotGroupMember.Error(),
		},
		{
			name: "InternalError",
			url:  fmt.Sprintf("/expenses?group_id=%d", group.ID),
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				arg := domain.ListExpensesParams{GroupID: group.ID}

				expenseService.EXPECT().
					List(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(arg)).
					Times(1).
					Return(nil, sql.ErrConnDone)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			expenseService := NewMockService(ctrl)
			expenseHandler := NewHandler(expenseService)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.GET("/expenses", expenseHandler.List)

			tc.buildStubs(expenseService)

			req, err := http.NewRequest(http.MethodGet, tc.url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					Expenses []domain.Expense `json:"expenses"`
				}{},
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else {
				tc.checkData(res.Data)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	user := helpers.RandomUser()
	other := helpers.RandomUser()
	group := helpers.RandomGroup(user, other)
	expense := helpers.RandomExpense(group, user.ID)
	tokenSymmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	registerCategoryValidator(t)

	newDescription := randompkg.String(12)
	updated := expense
	updated.Description = newDescription

	updateArg := domain.UpdateExpenseParams{
		ID:          expense.ID,
		Description: &newDescription,
	}

	negativeAmount := moneypkg.MustParse("-5.00")

	authType := middleware.AuthTypeBearer
	duration := time.Minute

	type requestBody struct {
		Description *string         `json:"description,omitempty"`
		Category    *string         `json:"category,omitempty"`
		Amount      *moneypkg.Money `json:"amount,omitempty"`
	}

	badCategory := "gadgets"

	testCases := []struct {
		name           string
		expenseID      int64
		requestBody    requestBody
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(expenseService *MockService)
		wantStatusCode int
		wantError      string
		checkData      func(data any)
	}{
		{
			name:        "OK",
			expenseID:   expense.ID,
			requestBody: requestBody{Description: &newDescription},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Update(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(updateArg)).
					Times(1).
					Return(updated, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(data any) {
				got, ok := data.(*struct {
					Expense domain.Expense `json:"expense"`
				})
				if !ok {
					t.Errorf(`res.Data=%v, failed type conversion`, data)
				}

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(updated, got.Expense, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:        "NoAuthorization",
			expenseID:   expense.ID,
			requestBody: requestBody{Description: &newDescription},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name:        "InvalidID",
			expenseID:   -1,
			requestBody: requestBody{Description: &newDescription},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID must be at least 1",
		},
		{
			name:        "UnknownCategory",
			expenseID:   expense.ID,
			requestBody: requestBody{Category: &badCategory},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Category must be a known expense category",
		},
		{
			name:        "ExpenseNotFound",
			expenseID:   expense.ID,
			requestBody: requestBody{Description: &newDescription},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Update(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(updateArg)).
					Times(1).
					Return(domain.Expense{}, domain.ErrExpenseNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrExpenseNotFound.Error(),
		},
		{
			name:        "InvalidAmount",
			expenseID:   expense.ID,
			requestBody: requestBody{Amount: &negativeAmount},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				arg := domain.UpdateExpenseParams{
					ID:     expense.ID,
					Amount: &negativeAmount,
				}

				expenseService.EXPECT().
					Update(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(arg)).
					Times(1).
					Return(domain.Expense{}, domain.ErrInvalidAmount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidAmount.Error(),
		},
		{
			name:        "NotGroupMember",
			expenseID:   expense.ID,
			requestBody: requestBody{Description: &newDescription},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Update(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(updateArg)).
					Times(1).
					Return(domain.Expense{}, domain.ErrNotGroupMember)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrNotGroupMember.Error(),
		},
		{
			name:        "InternalError",
			expenseID:   expense.ID,
			requestBody: requestBody{Description: &newDescription},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Update(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(updateArg)).
					Times(1).
					Return(domain.Expense{}, sql.ErrConnDone)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			expenseService := NewMockService(ctrl)
			expenseHandler := NewHandler(expenseService)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.PATCH("/expenses/:id", expenseHandler.Update)

			tc.buildStubs(expenseService)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			url := fmt.Sprintf("/expenses/%d", tc.expenseID)
			req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					Expense domain.Expense `json:"expense"`
				}{},
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else {
				tc.checkData(res.Data)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	user := helpers.RandomUser()
	other := helpers.RandomUser()
	group := helpers.RandomGroup(user, other)
	expense := helpers.RandomExpense(group, user.ID)
	tokenSymmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	authType := middleware.AuthTypeBearer
	duration := time.Minute

	testCases := []struct {
		name           string
		expenseID      int64
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(expenseService *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:      "OK",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Delete(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(expense.ID)).
					Times(1).
					Return(nil)
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:      "NoAuthorization",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Delete(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name:      "InvalidID",
			expenseID: -1,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Delete(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID must be at least 1",
		},
		{
			name:      "ExpenseNotFound",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Delete(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(expense.ID)).
					Times(1).
					Return(domain.ErrExpenseNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrExpenseNotFound.Error(),
		},
		{
			name:      "NotGroupMember",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Delete(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(expense.ID)).
					Times(1).
					Return(domain.ErrNotGroupMember)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrNotGroupMember.Error(),
		},
		{
			name:      "InternalError",
			expenseID: expense.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					Delete(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(expense.ID)).
					Times(1).
					Return(sql.ErrConnDone)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			expenseService := NewMockService(ctrl)
			expenseHandler := NewHandler(expenseService)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.DELETE("/expenses/:id", expenseHandler.Delete)

			tc.buildStubs(expenseService)

			url := fmt.Sprintf("/expenses/%d", tc.expenseID)
			req, err := http.NewRequest(http.MethodDelete, url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if tc.wantStatusCode == http.StatusNoContent {
				return
			}

			var res web.Response
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if res.Error != tc.wantError {
				t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
			}
		})
	}
}

func TestExportCSV(t *testing.T) {
	user := helpers.RandomUser()
	other := helpers.RandomUser()
	group := helpers.RandomGroup(user, other)
	csvContent := []byte("Date,Description,Category,Amount,Paid By,Split Type,Participants\n")
	tokenSymmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	authType := middleware.AuthTypeBearer
	duration := time.Minute

	testCases := []struct {
		name           string
		groupID        int64
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(expenseService *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:    "OK",
			groupID: group.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					ExportCSV(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(group.ID)).
					Times(1).
					Return(csvContent, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:    "NoAuthorization",
			groupID: group.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					ExportCSV(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name:    "GroupNotFound",
			groupID: group.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					ExportCSV(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(group.ID)).
					Times(1).
					Return(nil, domain.ErrGroupNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrGroupNotFound.Error(),
		},
		{
			name:    "NotGroupMember",
			groupID: group.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					ExportCSV(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(group.ID)).
					Times(1).
					Return(nil, domain.ErrNotGroupMember)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrNotGroupMember.Error(),
		},
		{
			name:    "InternalError",
			groupID: group.ID,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, user.Email, duration)
			},
			buildStubs: func(expenseService *MockService) {
				expenseService.EXPECT().
					ExportCSV(gomock.Any(), gomock.Eq(user.Email), gomock.Eq(group.ID)).
					Times(1).
					Return(nil, sql.ErrConnDone)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			expenseService := NewMockService(ctrl)
			expenseHandler := NewHandler(expenseService)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.GET("/groups/:id/expenses/export", expenseHandler.ExportCSV)

			tc.buildStubs(expenseService)

			url := fmt.Sprintf("/groups/%d/expenses/export", tc.groupID)
			req, err := http.NewRequest(http.MethodGet, url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if tc.wantStatusCode == http.StatusOK {
				if got := recorder.Header().Get("Content-Type"); got != "text/csv" {
					t.Errorf(`Content-Type=%q, want "text/csv"`, got)
				}

				wantDisposition := fmt.Sprintf(`attachment; filename="group-%d-expenses.csv"`, group.ID)
				if got := recorder.Header().Get("Content-Disposition"); got != wantDisposition {
					t.Errorf(`Content-Disposition=%q, want %q`, got, wantDisposition)
				}

				if got := recorder.Body.String(); got != string(csvContent) {
					t.Errorf("Body=%q, want %q", got, string(csvContent))
				}

				return
			}

			var res web.Response
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if res.Error != tc.wantError {
				t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
			}
		})
	}
}
