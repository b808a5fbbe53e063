package subscriptionstore_test

import (
	"errors"
	"testing"
	"time"

	subscriptionstore "github.com/dalemusser/coachhub/internal/app/store/subscriptions"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestPriceAndDiscount(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	price, end, err := subscriptionstore.Price(models.PlanYearly, start)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if price != subscriptionstore.YearlyPriceCents || !end.Equal(start.AddDate(1, 0, 0)) {
		t.Errorf("yearly: got %d until %v", price, end)
	}
	if _, _, err := subscriptionstore.Price("weekly", start); !errors.Is(err, subscriptionstore.ErrBadPlan) {
		t.Errorf("expected ErrBadPlan, got %v", err)
	}

	tests := []struct {
		price   int64
		percent int
		want    int64
	}{
		{19900, 0, 19900},
		{19900, 25, 14925},
		{19900, 33, 13333},
		{19900, 100, 0},
	}
	for _, tt := range tests {
		if got := subscriptionstore.Discounted(tt.price, tt.percent); got != tt.want {
			t.Errorf("Discounted(%d, %d) = %d, want %d", tt.price, tt.percent, got, tt.want)
		}
	}
}

func TestStore_ActivateAndCancel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := subscriptionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := primitive.NewObjectID()
	now := time.Now().UTC()

	first, err := store.Activate(ctx, teacher, models.PlanMonthly, nil, now)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if first.PaidCents != subscriptionstore.MonthlyPriceCents {
		t.Errorf("PaidCents: got %d", first.PaidCents)
	}

	disc := &models.Discount{ID: primitive.NewObjectID(), Percent: 50}
	second, err := store.Activate(ctx, teacher, models.PlanYearly, disc, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Activate yearly: %v", err)
	}
	if second.PaidCents != subscriptionstore.YearlyPriceCents/2 || second.DiscountID == nil {
		t.Errorf("discount not applied: %+v", second)
	}

	current, err := store.GetForTeacher(ctx, teacher)
	if err != nil {
		t.Fatalf("GetForTeacher: %v", err)
	}
	if current.ID != second.ID {
		t.Errorf("expected latest subscription")
	}

	active, err := store.IsActive(ctx, teacher, now)
	if err != nil || !active {
		t.Errorf("IsActive: %v %v", active, err)
	}

	if _, err := store.Cancel(ctx, teacher, now); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := store.Cancel(ctx, teacher, now); err != mongo.ErrNoDocuments {
		t.Errorf("second Cancel: expected ErrNoDocuments, got %v", err)
	}
	if active, _ := store.IsActive(ctx, teacher, now); active {
		t.Error("expected no active subscription after cancel")
	}
}
