package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/celerix-dev/celerix-records/pkg/schema"
)

type clockInCreate struct {
	Email    string `json:"email" binding:"required"`
	Location string `json:"location" binding:"required"`
}

type clockInUpdate struct {
	Email    string  `json:"email" binding:"required"`
	Location string  `json:"location" binding:"required"`
	ClockIn  *string `json:"clock_in"`
}

func (h *Handler) ListClockIns(c *gin.Context) {
	ctx, span, done := h.begin(c, "ListClockIns")
	defer done()

	docs, err := h.Store.Find(ctx, engine.ClockInCollection, nil)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapClockIns(docs)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetClockIn(c *gin.Context) {
	ctx, span, done := h.begin(c, "GetClockIn")
	defer done()

	id, err := pathID(c, span)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	doc, err := h.Store.FindOne(ctx, engine.ClockInCollection, id)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapClockIn(doc)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// clockInFilter reads email, location and clock_in from the query string.
func clockInFilter(c *gin.Context) (*engine.Filter, error) {
	f := engine.NewFilter()
	if v := c.Query("email"); v != "" {
		f.Eq("email", v)
	}
	if v := c.Query("location"); v != "" {
		f.Eq("location", v)
	}
	if v := c.Query("clock_in"); v != "" {
		t, err := engine.ParseTime(v)
		if err != nil {
			return nil, fmt.Errorf("%w: clock_in: %v", errValidation, err)
		}
		f.Gte("clock_in", t)
	}
	return f, nil
}

func (h *Handler) FilterClockIns(c *gin.Context) {
	ctx, span, done := h.begin(c, "FilterClockIns")
	defer done()

	f, err := clockInFilter(c)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	docs, err := h.Store.Find(ctx, engine.ClockInCollection, f)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapClockIns(docs)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateClockIn(c *gin.Context) {
	ctx, span, done := h.begin(c, "CreateClockIn")
	defer done()

	var input clockInCreate
	if err := bindJSON(c, &input); err != nil {
		h.fail(c, span, err)
		return
	}

	id := engine.NewID()
	doc, err := engine.NewDocument(map[string]any{
		"email":    input.Email,
		"location": input.Location,
		"clock_in": engine.Timestamp(h.now()),
	})
	if err != nil {
		h.fail(c, span, err)
		return
	}
	if err := h.Store.InsertOne(ctx, engine.ClockInCollection, id, doc); err != nil {
		h.fail(c, span, err)
		return
	}
	c.Header("Location", "/clock-in/"+id.String())

	if h.StrictCreate {
		created, err := h.Store.FindOne(ctx, engine.ClockInCollection, id)
		if err != nil {
			h.fail(c, span, err)
			return
		}
		out, err := schema.MapClockIn(created)
		if err != nil {
			h.fail(c, span, err)
			return
		}
		c.JSON(http.StatusCreated, out)
		return
	}

	docs, err := h.Store.Find(ctx, engine.ClockInCollection, nil)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapClockIns(docs)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateClockIn only rewrites clock_in. Email and location are required in
// the body but are not stored.
func (h *Handler) UpdateClockIn(c *gin.Context) {
	ctx, span, done := h.begin(c, "UpdateClockIn")
	defer done()

	id, err := pathID(c, span)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	var input clockInUpdate
	if err := bindJSON(c, &input); err != nil {
		h.fail(c, span, err)
		return
	}

	stamp := engine.Timestamp(h.now())
	if input.ClockIn != nil && *input.ClockIn != "" {
		t, err := engine.ParseTime(*input.ClockIn)
		if err != nil {
			h.fail(c, span, fmt.Errorf("%w: clock_in: %v", errValidation, err))
			return
		}
		stamp = engine.Timestamp(t)
	}

	if _, err := h.Store.FindOne(ctx, engine.ClockInCollection, id); err != nil {
		h.fail(c, span, err)
		return
	}
	if err := h.Store.UpdateOne(ctx, engine.ClockInCollection, id, map[string]any{"clock_in": stamp}); err != nil {
		h.fail(c, span, err)
		return
	}
	updated, err := h.Store.FindOne(ctx, engine.ClockInCollection, id)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapClockIn(updated)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteClockIn(c *gin.Context) {
	ctx, span, done := h.begin(c, "DeleteClockIn")
	defer done()

	id, err := pathID(c, span)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	doc, err := h.Store.DeleteOne(ctx, engine.ClockInCollection, id)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapClockIn(doc)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

