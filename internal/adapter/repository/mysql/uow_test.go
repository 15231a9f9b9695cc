package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/uow"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	inq := makeInquiry(inquiry.TypeBorrower)
	l := makeLoan(t, loan.StatusActive)
	l.InquiryID = inq.InquiryID

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Inquiries.Create(ctx, inq); err != nil {
			return err
		}
		return r.Loans.Create(ctx, l)
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	if _, err := NewInquiryRepository(db).GetByInquiryID(ctx, inq.InquiryID); err != nil {
		t.Fatalf("inquiry not visible after commit: %v", err)
	}
	if _, err := NewLoanRepository(db).GetByLoanID(ctx, l.LoanID); err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinInquiryTx_CommitAndRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	inqRepo := NewInquiryRepository(db)
	loanRepo := NewLoanRepository(db)

	inq := makeInquiry(inquiry.TypeBorrower)
	inq.Stage = inquiry.StageProposed
	if err := inqRepo.Create(ctx, inq); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// approve + create the loan, then fail: both writes must vanish
	l := makeLoan(t, loan.StatusActive)
	l.InquiryID = inq.InquiryID
	sentinel := errors.New("stop")
	err := guow.WithinInquiryTx(ctx, inq.InquiryID, func(r uow.Repos, i *inquiry.Inquiry) error {
		if i.Stage != inquiry.StageProposed {
			t.Fatalf("unexpected inquiry passed to fn: %+v", i)
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		i.LoanID = l.LoanID
		i.WriteStage(inquiry.StageApproved, time.Now())
		if err := r.Inquiries.Save(ctx, i); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	got, _ := inqRepo.GetByInquiryID(ctx, inq.InquiryID)
	if got.Stage != inquiry.StageProposed || got.LoanID != "" {
		t.Fatalf("expected untouched inquiry after rollback, got %+v", got)
	}
	if _, err := loanRepo.GetByLoanID(ctx, l.LoanID); !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("expected loan absent after rollback, got %v", err)
	}

	// same work without the failure commits atomically
	err = guow.WithinInquiryTx(ctx, inq.InquiryID, func(r uow.Repos, i *inquiry.Inquiry) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		i.LoanID = l.LoanID
		i.WriteStage(inquiry.StageApproved, time.Now())
		return r.Inquiries.Save(ctx, i)
	})
	if err != nil {
		t.Fatalf("WithinInquiryTx commit: %v", err)
	}
	got, _ = inqRepo.GetByInquiryID(ctx, inq.InquiryID)
	if got.Stage != inquiry.StageApproved || got.LoanID != l.LoanID {
		t.Fatalf("commit not visible: %+v", got)
	}
}

func TestGormUoW_WithinInquiryTx_NotFound(t *testing.T) {
	db := openTestDB(t)
	guow := NewGormUoW(db)

	err := guow.WithinInquiryTx(context.Background(), "nope", func(r uow.Repos, i *inquiry.Inquiry) error {
		t.Fatalf("callback should not be called when inquiry missing")
		return nil
	})
	if !errors.Is(err, inquiry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
