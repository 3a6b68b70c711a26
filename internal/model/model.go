package model

import (
	"time"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// DefaultRole is granted to every actor when the identity provider
// reports a new registration.
const DefaultRole = RoleStudent

type BorrowingStatus string

const (
	StatusPending  BorrowingStatus = "PENDING"
	StatusActive   BorrowingStatus = "ACTIVE"
	StatusRejected BorrowingStatus = "REJECTED"
	StatusReturned BorrowingStatus = "RETURNED"
)

// borrowingTransitions is the only legal adjacency for a borrowing record.
// REJECTED and RETURNED are terminal.
var borrowingTransitions = map[BorrowingStatus][]BorrowingStatus{
	StatusPending: {StatusActive, StatusRejected},
	StatusActive:  {StatusReturned},
}

func (s BorrowingStatus) CanTransitionTo(next BorrowingStatus) bool {
	for _, allowed := range borrowingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BorrowingStatus) Terminal() bool {
	return len(borrowingTransitions[s]) == 0
}

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationFulfilled ReservationStatus = "FULFILLED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

// ReservationTTLDays is the fixed hold window on an unavailable book.
const ReservationTTLDays = 7

// MaxRenewals is the hard cap on renewals per borrowing record.
const MaxRenewals = 2

type Book struct {
	ID               int    `json:"-" db:"id"`
	BookUid          string `json:"bookUid" db:"book_uid"`
	Title            string `json:"title" db:"title"`
	Author           string `json:"author" db:"author"`
	Publisher        string `json:"publisher" db:"publisher"`
	ISBN             string `json:"isbn" db:"isbn"`
	Year             int    `json:"year" db:"year"`
	Type             string `json:"type" db:"type"`
	AccessType       string `json:"accessType" db:"access_type"`
	TotalCopies      int    `json:"totalCopies" db:"total_copies"`
	AvailableCopies  int    `json:"availableCopies" db:"available_copies"`
	RequiresApproval bool   `json:"requiresApproval" db:"requires_approval"`
	MaxBorrowDays    int    `json:"maxBorrowDays" db:"max_borrow_days"`
}

type BorrowingRecord struct {
	ID           int             `json:"-" db:"id"`
	RecordUid    string          `json:"recordUid" db:"record_uid"`
	Username     string          `json:"username" db:"username"`
	BookID       int             `json:"-" db:"book_id"`
	Status       BorrowingStatus `json:"status" db:"status"`
	RequestDate  time.Time       `json:"requestDate" db:"request_date"`
	ApprovalDate *time.Time      `json:"approvalDate,omitempty" db:"approval_date"`
	BorrowDate   *time.Time      `json:"borrowDate,omitempty" db:"borrow_date"`
	DueDate      *time.Time      `json:"dueDate,omitempty" db:"due_date"`
	ReturnDate   *time.Time      `json:"returnDate,omitempty" db:"return_date"`
	RenewalCount int             `json:"renewalCount" db:"renewal_count"`
	ApprovedBy   *string         `json:"approvedBy,omitempty" db:"approved_by"`
	Notes        string          `json:"notes" db:"notes"`
}

// Overdue is a derived display state, never stored.
func (b BorrowingRecord) Overdue(now time.Time) bool {
	return b.Status == StatusActive && b.DueDate != nil && b.DueDate.Before(now)
}

// BorrowingView joins a record with its book and holder profile for display.
type BorrowingView struct {
	BorrowingRecord `json:",inline"`
	BookUid         string `json:"bookUid" db:"book_uid"`
	BookTitle       string `json:"bookTitle" db:"title"`
	BookAuthor      string `json:"bookAuthor" db:"author"`
	HolderName      string `json:"holderName" db:"holder_name"`
	Overdue         bool   `json:"overdue" db:"-"`
}

type Reservation struct {
	ID              int               `json:"-" db:"id"`
	ReservationUid  string            `json:"reservationUid" db:"reservation_uid"`
	Username        string            `json:"username" db:"username"`
	BookID          int               `json:"-" db:"book_id"`
	Status          ReservationStatus `json:"status" db:"status"`
	ReservationDate time.Time         `json:"reservationDate" db:"reservation_date"`
	ExpiryDate      time.Time         `json:"expiryDate" db:"expiry_date"`
	FulfilledDate   *time.Time        `json:"fulfilledDate,omitempty" db:"fulfilled_date"`
	Notified        bool              `json:"notified" db:"notified"`
}

type User struct {
	Username string `json:"username" db:"username"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
}

type Review struct {
	ID        int       `json:"id" db:"id"`
	BookID    int       `json:"-" db:"book_id"`
	Username  string    `json:"username" db:"username"`
	Stars     int       `json:"stars" db:"stars"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type CreateBookRequest struct {
	Title            string `json:"title" validate:"required"`
	Author           string `json:"author" validate:"required"`
	Publisher        string `json:"publisher"`
	ISBN             string `json:"isbn"`
	Year             int    `json:"year"`
	Type             string `json:"type"`
	AccessType       string `json:"accessType"`
	TotalCopies      int    `json:"totalCopies" validate:"gte=0"`
	RequiresApproval bool   `json:"requiresApproval"`
	MaxBorrowDays    int    `json:"maxBorrowDays" validate:"gt=0"`
}

type UpdateBookRequest struct {
	Title            *string `json:"title"`
	Author           *string `json:"author"`
	Publisher        *string `json:"publisher"`
	ISBN             *string `json:"isbn"`
	Year             *int    `json:"year"`
	Type             *string `json:"type"`
	AccessType       *string `json:"accessType"`
	RequiresApproval *bool   `json:"requiresApproval"`
	MaxBorrowDays    *int    `json:"maxBorrowDays" validate:"omitempty,gt=0"`
}

type BorrowRequest struct {
	BookUid string `json:"bookUid" validate:"required,uuid"`
	Notes   string `json:"notes"`
}

type CreateReservationRequest struct {
	BookUid string `json:"bookUid" validate:"required,uuid"`
}

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required"`
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type RoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=student librarian admin"`
}

type CreateReviewRequest struct {
	Stars int    `json:"stars" validate:"required,gte=1,lte=5"`
	Text  string `json:"text"`
}
