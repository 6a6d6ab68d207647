package store

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleLawyer    UserRole = "LAWYER"
	RoleAssistant UserRole = "ASSISTANT"
	RoleStudent   UserRole = "STUDENT"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleLawyer, RoleAssistant, RoleStudent:
		return true
	}
	return false
}

// SubscriptionPlan is informational only; no feature is gated on it.
type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "FREE"
	PlanPremium    SubscriptionPlan = "PREMIUM"
	PlanEnterprise SubscriptionPlan = "ENTERPRISE"
)

func (p SubscriptionPlan) Valid() bool {
	switch p {
	case PlanFree, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}

// User lives for the length of a session and is never stored.
type User struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Role         UserRole         `json:"role"`
	Subscription SubscriptionPlan `json:"subscription"`
}

type CaseStatus string

const (
	CaseStatusOpen     CaseStatus = "OPEN"
	CaseStatusPending  CaseStatus = "PENDING"
	CaseStatusClosed   CaseStatus = "CLOSED"
	CaseStatusArchived CaseStatus = "ARCHIVED"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusPending, CaseStatusClosed, CaseStatusArchived:
		return true
	}
	return false
}

type CaseDocument struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	URL  *string `json:"url,omitempty"`
}

type AIResponse struct {
	Query    string    `json:"query"`
	Response string    `json:"response"`
	Date     time.Time `json:"date"`
}

// CaseFile is a client matter. Notes, Documents and AIResponses only grow,
// and DateUpdated moves forward whenever one of them does.
type CaseFile struct {
	ID          string         `json:"id"`
	ClientName  string         `json:"client_name"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      CaseStatus     `json:"status"`
	DateCreated time.Time      `json:"date_created"`
	DateUpdated time.Time      `json:"date_updated"`
	Notes       []string       `json:"notes"`
	Documents   []CaseDocument `json:"documents"`
	AIResponses []AIResponse   `json:"ai_responses"`
}

// ActivityLog is an immutable audit record.
type ActivityLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	SenderUser  = "user"
	SenderModel = "model"
)

type ChatMessage struct {
	ID        string `json:"id"`
	ChatID    string `json:"chat_id"`
	Role      string `json:"role"` // "user" or "model"
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix millis, strictly increasing within a chat
}

type LegalCategory string

const (
	CategoryCode          LegalCategory = "Code"
	CategoryLaw           LegalCategory = "Loi"
	CategoryDecree        LegalCategory = "Décret"
	CategoryJurisprudence LegalCategory = "Jurisprudence"
)

func (c LegalCategory) Valid() bool {
	switch c {
	case CategoryCode, CategoryLaw, CategoryDecree, CategoryJurisprudence:
		return true
	}
	return false
}

// LegalDocument is one entry of the reference library used to ground
// legal searches.
type LegalDocument struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Category  LegalCategory `json:"category"`
	Content   string        `json:"content"`
	Tags      []string      `json:"tags"`
	Embedding []float32     `json:"-"`
}
