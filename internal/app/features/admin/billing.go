// internal/app/features/admin/billing.go
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type claimRequest struct {
	TeacherID string `json:"teacherId" validate:"required,objectid" label:"Öğretmen"`
}

type discountRequest struct {
	Code      string `json:"code" validate:"required,max=40" label:"Kod"`
	Percent   int    `json:"percent" validate:"required,min=1,max=100" label:"İndirim oranı"`
	MaxUses   int    `json:"maxUses" validate:"gte=0" label:"Kullanım sınırı"`
	ExpiresAt string `json:"expiresAt" label:"Son kullanma"`
}

type subscriptionRequest struct {
	Plan         string `json:"plan" validate:"required,oneof=free monthly yearly" label:"Plan"`
	DiscountCode string `json:"discountCode" validate:"max=40" label:"İndirim kodu"`
}

var now = func() time.Time { return time.Now().UTC() }

/*─────────────────────────────────────────────────────────────────────────────*
| Free teacher slots                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeListFreeSlots handles GET /free-slots.
func (h *Handler) ServeListFreeSlots(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	slots, err := h.FreeSlots.List(ctx)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "admin: list free slots", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{
		"cap":       h.FreeSlots.Cap(),
		"used":      len(slots),
		"remaining": h.FreeSlots.Cap() - len(slots),
		"slots":     slots,
	})
}

// ServeClaimFreeSlot handles POST /free-slots. Claiming for a teacher that
// already holds a slot returns that slot with 200.
func (h *Handler) ServeClaimFreeSlot(w http.ResponseWriter, r *http.Request) {
	var in claimRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	tid, _ := primitive.ObjectIDFromHex(in.TeacherID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.loadTeacher(ctx, w, r, tid); !ok {
		return
	}
	slot, created, err := h.FreeSlots.Claim(ctx, tid, now())
	if err != nil {
		shared.StoreError(w, r, h.Log, "admin: claim free slot", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.Log.Info("free slot claimed",
			zap.String("teacher_id", tid.Hex()),
			zap.Int("slot", slot.SlotNumber))
	}
	jsonutil.WriteJSON(w, status, map[string]any{"slot": slot})
}

// ServeReleaseFreeSlot handles DELETE /free-slots/{id}, where id is the
// teacher holding the slot.
func (h *Handler) ServeReleaseFreeSlot(w http.ResponseWriter, r *http.Request) {
	tid, ok := shared.RequireID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.FreeSlots.Release(ctx, tid); err != nil {
		shared.StoreError(w, r, h.Log, "admin: release free slot", err)
		return
	}
	h.Log.Info("free slot released", zap.String("teacher_id", tid.Hex()))
	jsonutil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Discounts                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeListDiscounts handles GET /discounts: codes that can still be redeemed.
func (h *Handler) ServeListDiscounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Discounts.ListActive(ctx, now())
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "admin: list discounts", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"discounts": list})
}

// ServeCreateDiscount handles POST /discounts.
func (h *Handler) ServeCreateDiscount(w http.ResponseWriter, r *http.Request) {
	var in discountRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	d := models.Discount{Code: in.Code, Percent: in.Percent, MaxUses: in.MaxUses}
	if in.ExpiresAt != "" {
		t, err := shared.ParseDate(in.ExpiresAt)
		if err != nil {
			jsonutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		d.ExpiresAt = &t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Discounts.Create(ctx, d)
	if err != nil {
		shared.StoreError(w, r, h.Log, "admin: create discount", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]any{"discount": d})
}

// ServeDeactivateDiscount handles DELETE /discounts/{id}.
func (h *Handler) ServeDeactivateDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.RequireID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Discounts.Deactivate(ctx, id); err != nil {
		shared.StoreError(w, r, h.Log, "admin: deactivate discount", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Subscriptions                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeGetSubscription handles GET /teachers/{id}/subscription.
func (h *Handler) ServeGetSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.requireTeacher(ctx, w, r)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.GetForTeacher(ctx, u.ID)
	if err != nil {
		shared.StoreError(w, r, h.Log, "admin: load subscription", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{
		"subscription": sub,
		"active":       sub.Status == models.SubscriptionActive && sub.PeriodEnd.After(now()),
	})
}

// ServeActivateSubscription handles POST /teachers/{id}/subscription.
//
// The free plan needs a free teacher slot, which is claimed here, and takes
// no discount. A discount code is redeemed only after the plan is known to
// be valid.
func (h *Handler) ServeActivateSubscription(w http.ResponseWriter, r *http.Request) {
	var in subscriptionRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.requireTeacher(ctx, w, r)
	if !ok {
		return
	}
	at := now()

	var discount *models.Discount
	switch {
	case in.Plan == models.PlanFree && in.DiscountCode != "":
		jsonutil.WriteError(w, http.StatusBadRequest, "Ücretsiz plana indirim kodu uygulanamaz.")
		return
	case in.Plan == models.PlanFree:
		if _, _, err := h.FreeSlots.Claim(ctx, u.ID, at); err != nil {
			shared.StoreError(w, r, h.Log, "admin: claim free slot", err)
			return
		}
	case in.DiscountCode != "":
		d, err := h.Discounts.Redeem(ctx, in.DiscountCode, at)
		if err != nil {
			shared.StoreError(w, r, h.Log, "admin: redeem discount", err)
			return
		}
		discount = &d
	}

	sub, err := h.Subscriptions.Activate(ctx, u.ID, in.Plan, discount, at)
	if err != nil {
		shared.StoreError(w, r, h.Log, "admin: activate subscription", err)
		return
	}
	h.Log.Info("subscription activated",
		zap.String("teacher_id", u.ID.Hex()),
		zap.String("plan", sub.Plan),
		zap.Int64("paid_cents", sub.PaidCents))
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]any{"subscription": sub})
}

// ServeCancelSubscription handles DELETE /teachers/{id}/subscription.
func (h *Handler) ServeCancelSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.requireTeacher(ctx, w, r)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.Cancel(ctx, u.ID, now())
	if err != nil {
		shared.StoreError(w, r, h.Log, "admin: cancel subscription", err)
		return
	}
	h.Log.Info("subscription cancelled", zap.String("teacher_id", u.ID.Hex()))
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"subscription": sub})
}
