package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"lembah/internal/domain/account"
	"lembah/internal/domain/apperr"
	"lembah/internal/domain/member"
	"lembah/internal/domain/payment"
)

// MemberStoreForRegister defines the store interface needed by RegisterMember.
type MemberStoreForRegister interface {
	CreateWithPayment(ctx context.Context, m member.Member, p payment.Payment) (memberID, paymentID int64, err error)
}

// AccountLookup resolves staff accounts by id.
type AccountLookup interface {
	GetByID(ctx context.Context, id int64) (account.Account, error)
}

// RegisterMemberInput carries the registration form.
// Fields the program does not use are ignored.
type RegisterMemberInput struct {
	Program   string
	FullName  string
	Phone     string
	Email     string
	Gender    string
	Address   string
	BirthDate string // YYYY-MM-DD, optional
	HeightCm  int
	WeightKg  int
	Goal      string
	TrainerID int64 // optional
	Nominal   int
}

// RegisterMemberResult describes the persisted registration.
type RegisterMemberResult struct {
	MemberID    int64
	PaymentID   int64
	ExpiresOn   time.Time
	PortalToken string
	Reference   string
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	MemberStore  MemberStoreForRegister
	AccountStore AccountLookup
	Clock        Clock
	NewID        func() string // portal tokens and payment references; nil uses uuid
	Receipts     ReceiptDeps   // zero value skips the receipt
}

// ExecuteRegisterMember enrolls a member and records the founding payment.
// PRE: input comes from the registration form
// POST: member (status Aktif, expiry from program) and payment "Pendaftaran <program>" persist together
// INVARIANT: a failed validation writes nothing
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (RegisterMemberResult, error) {
	program, err := member.ParseProgram(input.Program)
	if err != nil {
		return RegisterMemberResult{}, err
	}
	if input.Nominal <= 0 {
		return RegisterMemberResult{}, apperr.Validation("nominal must be a positive amount")
	}
	birthDate, err := member.ParseDate(input.BirthDate)
	if err != nil {
		return RegisterMemberResult{}, err
	}

	m := member.Member{
		FullName:  strings.TrimSpace(input.FullName),
		Program:   program,
		Phone:     strings.TrimSpace(input.Phone),
		Email:     strings.TrimSpace(input.Email),
		Gender:    strings.TrimSpace(input.Gender),
		Address:   strings.TrimSpace(input.Address),
		BirthDate: birthDate,
		HeightCm:  input.HeightCm,
		WeightKg:  input.WeightKg,
		Goal:      strings.TrimSpace(input.Goal),
		TrainerID: input.TrainerID,
	}
	m.Normalize()

	today := deps.Clock.Today()
	m.Register(today)
	m.PortalToken = newID(deps.NewID)
	if err := m.Validate(); err != nil {
		return RegisterMemberResult{}, err
	}

	if m.TrainerID != 0 {
		trainer, err := deps.AccountStore.GetByID(ctx, m.TrainerID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return RegisterMemberResult{}, apperr.Validation("trainer %d does not exist", m.TrainerID)
			}
			return RegisterMemberResult{}, err
		}
		if !trainer.IsTrainer() {
			return RegisterMemberResult{}, apperr.Validation("%s is not a personal trainer", trainer.Username)
		}
	}

	p := payment.Payment{
		PaidOn:    today,
		Amount:    input.Nominal,
		Note:      payment.RegistrationNote(string(program)),
		Reference: newID(deps.NewID),
	}
	if err := p.Validate(); err != nil {
		return RegisterMemberResult{}, err
	}

	memberID, paymentID, err := deps.MemberStore.CreateWithPayment(ctx, m, p)
	if err != nil {
		return RegisterMemberResult{}, err
	}
	m.ID = memberID
	p.ID, p.MemberID = paymentID, memberID

	slog.Info("member_event", "event", "registered",
		"member_id", memberID, "program", string(program), "expires_on", member.FormatDate(m.ExpiresOn))

	deps.Receipts.send(ctx, m, p)

	return RegisterMemberResult{
		MemberID:    memberID,
		PaymentID:   paymentID,
		ExpiresOn:   m.ExpiresOn,
		PortalToken: m.PortalToken,
		Reference:   p.Reference,
	}, nil
}
