package service_test

import (
	"context"
	"testing"

	"github.com/saadjs/nutrilog/internal/service"
)

func TestDoctorHealthyFixture(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.logStew(t, service.ByAge(), testNow)

	report, err := service.RunDoctor(context.Background(), f.st)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !report.Healthy() || report.EntriesChecked != 1 {
		t.Fatalf("expected healthy report, got %+v", report)
	}
}

func TestDoctorFindsCatalogProblems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	if _, err := service.CreateAgeBand(ctx, f.st, service.AgeBandInput{MinMonths: 40, MaxMonths: 59}); err != nil {
		t.Fatalf("create band: %v", err)
	}
	if _, err := service.CreateDish(ctx, f.st, service.DishInput{Name: "Empty bowl"}); err != nil {
		t.Fatalf("create dish: %v", err)
	}

	report, err := service.RunDoctor(ctx, f.st)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.Healthy() {
		t.Fatalf("expected problems")
	}
	if len(report.BandIssues) != 1 || report.BandIssues[0].Kind != "gap" || report.BandIssues[0].FromMonth != 36 || report.BandIssues[0].ToMonth != 39 {
		t.Fatalf("unexpected band issues %+v", report.BandIssues)
	}
	if len(report.BandsWithoutRule) != 1 || report.BandsWithoutRule[0].MinMonths != 40 {
		t.Fatalf("unexpected bands without rule %+v", report.BandsWithoutRule)
	}
	if len(report.EmptyDishes) != 1 || report.EmptyDishes[0].Name != "Empty bowl" {
		t.Fatalf("unexpected empty dishes %+v", report.EmptyDishes)
	}
}
