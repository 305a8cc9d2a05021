package transaction

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a transaction by the kind of money movement it records.
type Type string

const (
	TypeCredit           Type = "CREDIT"
	TypeDebit            Type = "DEBIT"
	TypeTransferIn       Type = "TRANSFER_IN"
	TypeTransferOut      Type = "TRANSFER_OUT"
	TypeInvestment       Type = "INVESTMENT"
	TypeInvestmentReturn Type = "INVESTMENT_RETURN"
	TypeLoanDisbursement Type = "LOAN_DISBURSEMENT"
	TypeLoanRepayment    Type = "LOAN_REPAYMENT"
	TypeFee              Type = "FEE"
	TypeInterest         Type = "INTEREST"
	TypeCharge           Type = "CHARGE"
	TypeRefund           Type = "REFUND"
)

var types = map[Type]struct{}{
	TypeCredit: {}, TypeDebit: {}, TypeTransferIn: {}, TypeTransferOut: {},
	TypeInvestment: {}, TypeInvestmentReturn: {}, TypeLoanDisbursement: {},
	TypeLoanRepayment: {}, TypeFee: {}, TypeInterest: {}, TypeCharge: {}, TypeRefund: {},
}

// ParseType resolves a case-insensitive type name.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(s))
	if _, ok := types[t]; !ok {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}

	return t, nil
}

// IsCredit reports whether the type adds money to the account.
func (t Type) IsCredit() bool {
	switch t {
	case TypeCredit, TypeTransferIn, TypeInvestmentReturn, TypeLoanDisbursement, TypeRefund:
		return true
	}

	return false
}

// IsDebit reports whether the type deducts money from the account.
func (t Type) IsDebit() bool {
	switch t {
	case TypeDebit, TypeTransferOut, TypeInvestment, TypeLoanRepayment, TypeFee, TypeCharge:
		return true
	}

	return false
}

// Category is the business classification of a transaction.
type Category string

const (
	CategorySalary           Category = "SALARY"
	CategoryBonus            Category = "BONUS"
	CategoryInvestmentIncome Category = "INVESTMENT_INCOME"
	CategoryInterestEarned   Category = "INTEREST_EARNED"
	CategoryUtilities        Category = "UTILITIES"
	CategoryRent             Category = "RENT"
	CategoryMortgage         Category = "MORTGAGE"
	CategoryFoodDining       Category = "FOOD_DINING"
	CategoryTransportation   Category = "TRANSPORTATION"
	CategoryShopping         Category = "SHOPPING"
	CategoryHealthcare       Category = "HEALTHCARE"
	CategoryEducation        Category = "EDUCATION"
	CategoryInternalTransfer Category = "INTERNAL_TRANSFER"
	CategoryExternalTransfer Category = "EXTERNAL_TRANSFER"
	CategoryLoanDisbursement Category = "LOAN_DISBURSEMENT"
	CategoryLoanPayment      Category = "LOAN_PAYMENT"
	CategoryInvestmentBuy    Category = "INVESTMENT_BUY"
	CategoryInvestmentSell   Category = "INVESTMENT_SELL"
	CategoryBankFee          Category = "BANK_FEE"
	CategoryATMFee           Category = "ATM_FEE"
	CategoryLatePaymentFee   Category = "LATE_PAYMENT_FEE"
	CategoryOther            Category = "OTHER"
)

var categories = map[Category]struct{}{
	CategorySalary: {}, CategoryBonus: {}, CategoryInvestmentIncome: {},
	CategoryInterestEarned: {}, CategoryUtilities: {}, CategoryRent: {},
	CategoryMortgage: {}, CategoryFoodDining: {}, CategoryTransportation: {},
	CategoryShopping: {}, CategoryHealthcare: {}, CategoryEducation: {},
	CategoryInternalTransfer: {}, CategoryExternalTransfer: {},
	CategoryLoanDisbursement: {}, CategoryLoanPayment: {},
	CategoryInvestmentBuy: {}, CategoryInvestmentSell: {}, CategoryBankFee: {},
	CategoryATMFee: {}, CategoryLatePaymentFee: {}, CategoryOther: {},
}

// ParseCategory resolves a case-insensitive category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(s))
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("unknown transaction category %q", s)
	}

	return c, nil
}

// TypeNames and CategoryNames list the valid enum values, sorted, for
// validation messages.
func TypeNames() []string {
	return sortedKeys(types)
}

func CategoryNames() []string {
	return sortedKeys(categories)
}

func sortedKeys[K ~string](m map[K]struct{}) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, string(k))
	}

	sort.Strings(names)

	return names
}

const (
	// InitialVersion is the concurrency token a freshly inserted record carries.
	InitialVersion int64 = 1

	maxDescriptionLength = 100
)

var (
	orderIDPattern   = regexp.MustCompile(`^ORD-\d{6,}$`)
	accountIDPattern = regexp.MustCompile(`^ACC-\d{6,}$`)

	minAmount = decimal.RequireFromString("0.01")

	invalidTypeViolation     = "Invalid transaction type. Valid types are: " + strings.Join(TypeNames(), ", ")
	invalidCategoryViolation = "Invalid transaction category. Valid categories are: " + strings.Join(CategoryNames(), ", ")
)

// Transaction is a financial transaction recorded against an account.
//
// ID, OrderID and CreatedAt are immutable after insertion. Version is the
// optimistic-concurrency token: it starts at InitialVersion and the store
// increments it by exactly one on every accepted update.
type Transaction struct {
	ID          int64
	OrderID     string
	AccountID   string
	Amount      decimal.Decimal
	Type        Type
	Category    Category
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}

// New validates the raw creation fields and returns a transaction ready for
// insertion. All violations are collected into a single *InvalidError rather
// than failing on the first one.
func New(orderID, accountID string, amount decimal.Decimal, typ, category, description string) (*Transaction, error) {
	var violations []string

	if !orderIDPattern.MatchString(orderID) {
		violations = append(violations, "Order ID must start with 'ORD-' followed by at least 6 digits")
	}

	if !accountIDPattern.MatchString(accountID) {
		violations = append(violations, "Account ID must start with 'ACC-' followed by at least 6 digits")
	}

	parsedType, err := ParseType(typ)
	if err != nil {
		violations = append(violations, invalidTypeViolation)
	}

	parsedCategory, err := ParseCategory(category)
	if err != nil {
		violations = append(violations, invalidCategoryViolation)
	}

	if amount.Exponent() < -2 {
		violations = append(violations, "Amount cannot have more than 2 decimal places")
	}

	if amount.Abs().LessThan(minAmount) {
		violations = append(violations, "Amount absolute value cannot be less than 0.01")
	}

	// Sign convention: credits increase the account and carry a positive
	// amount, debits a negative one.
	switch parsedType {
	case TypeCredit:
		if amount.Sign() <= 0 {
			violations = append(violations, "Amount must be positive for CREDIT transactions")
		}
	case TypeDebit:
		if amount.Sign() >= 0 {
			violations = append(violations, "Amount must be negative for DEBIT transactions")
		}
	}

	if len(description) > maxDescriptionLength {
		violations = append(violations, "Description cannot exceed 100 characters")
	}

	if len(violations) > 0 {
		return nil, &InvalidError{Violations: violations}
	}

	return &Transaction{
		OrderID:     orderID,
		AccountID:   accountID,
		Amount:      amount,
		Type:        parsedType,
		Category:    parsedCategory,
		Description: description,
	}, nil
}
