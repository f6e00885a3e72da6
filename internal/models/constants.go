package models

// Role constants.
const (
	RoleCustomer  = "CUSTOMER"
	RoleDesigner  = "DESIGNER"
	RoleValidator = "VALIDATOR"
	RolePrintShop = "PRINT_SHOP"
	RoleAdmin     = "ADMIN"
)

// OrderStatus constants.
const (
	OrderStatusPending            = "PENDING"
	OrderStatusAwaitingValidation = "AWAITING_VALIDATION"
	OrderStatusNeedsAction        = "NEEDS_ACTION"
	OrderStatusDesigning          = "DESIGNING"
	OrderStatusReadyForPrint      = "READY_FOR_PRINT"
	OrderStatusPrinting           = "PRINTING"
	OrderStatusShipped            = "SHIPPED"
	OrderStatusDelivered          = "DELIVERED"
	OrderStatusCancelled          = "CANCELLED"
)

// Design plan kinds.
const (
	PlanKindPublic      = "PUBLIC"
	PlanKindSemiPrivate = "SEMI_PRIVATE"
	PlanKindPrivate     = "PRIVATE"
	PlanKindOwnDesign   = "OWN_DESIGN"
)

// PaymentStatus constants.
const (
	PaymentStatusPending          = "PENDING"
	PaymentStatusAwaitingApproval = "AWAITING_APPROVAL"
	PaymentStatusSuccess          = "SUCCESS"
	PaymentStatusFailed           = "FAILED"
)

// Payment purposes.
const (
	PaymentPurposeValidation   = "VALIDATION"
	PaymentPurposeDesign       = "DESIGN"
	PaymentPurposeFix          = "FIX"
	PaymentPurposePrint        = "PRINT"
	PaymentPurposeSubscription = "SUBSCRIPTION"
)

// Attribute kinds.
const (
	AttributeKindFreeText     = "FREE_TEXT"
	AttributeKindSingleSelect = "SINGLE_SELECT"
)

// Question input kinds.
const (
	QuestionKindText         = "TEXT"
	QuestionKindTextarea     = "TEXTAREA"
	QuestionKindNumber       = "NUMBER"
	QuestionKindSingleChoice = "SINGLE_CHOICE"
	QuestionKindMultiChoice  = "MULTI_CHOICE"
	QuestionKindImageUpload  = "IMAGE_UPLOAD"
	QuestionKindFileUpload   = "FILE_UPLOAD"
	QuestionKindColorPicker  = "COLOR_PICKER"
	QuestionKindDatePicker   = "DATE_PICKER"
	QuestionKindScale        = "SCALE"
)

// Validation failure kinds reported by the questionnaire engine.
const (
	FailureTooShort            = "TOO_SHORT"
	FailureTooLong             = "TOO_LONG"
	FailureOutOfRange          = "OUT_OF_RANGE"
	FailurePatternMismatch     = "PATTERN_MISMATCH"
	FailureTooFewSelections    = "TOO_FEW_SELECTIONS"
	FailureTooManySelections   = "TOO_MANY_SELECTIONS"
	FailureInvalidFormat       = "INVALID_FORMAT"
	FailureFileTooLarge        = "FILE_TOO_LARGE"
	FailureUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
)

// ValidRoles is the set of assignable user roles.
var ValidRoles = map[string]struct{}{
	RoleCustomer:  {},
	RoleDesigner:  {},
	RoleValidator: {},
	RolePrintShop: {},
	RoleAdmin:     {},
}

// ValidOrderStatuses is the set of valid order statuses.
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusPending:            {},
	OrderStatusAwaitingValidation: {},
	OrderStatusNeedsAction:        {},
	OrderStatusDesigning:          {},
	OrderStatusReadyForPrint:      {},
	OrderStatusPrinting:           {},
	OrderStatusShipped:            {},
	OrderStatusDelivered:          {},
	OrderStatusCancelled:          {},
}

// ValidPlanKinds is the set of valid design plan kinds.
var ValidPlanKinds = map[string]struct{}{
	PlanKindPublic:      {},
	PlanKindSemiPrivate: {},
	PlanKindPrivate:     {},
	PlanKindOwnDesign:   {},
}

// ValidQuestionKinds is the set of valid question input kinds.
var ValidQuestionKinds = map[string]struct{}{
	QuestionKindText:         {},
	QuestionKindTextarea:     {},
	QuestionKindNumber:       {},
	QuestionKindSingleChoice: {},
	QuestionKindMultiChoice:  {},
	QuestionKindImageUpload:  {},
	QuestionKindFileUpload:   {},
	QuestionKindColorPicker:  {},
	QuestionKindDatePicker:   {},
	QuestionKindScale:        {},
}

// ValidPaymentPurposes is the set of valid payment purposes.
var ValidPaymentPurposes = map[string]struct{}{
	PaymentPurposeValidation:   {},
	PaymentPurposeDesign:       {},
	PaymentPurposeFix:          {},
	PaymentPurposePrint:        {},
	PaymentPurposeSubscription: {},
}

// TerminalOrderStatuses are statuses no transition leaves.
var TerminalOrderStatuses = map[string]struct{}{
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}
