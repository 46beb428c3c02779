package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/celerix-dev/celerix-records/pkg/schema"
)

type itemCreate struct {
	Email      string `json:"email" binding:"required"`
	Name       string `json:"name" binding:"required"`
	ItemName   string `json:"item_name" binding:"required"`
	ExpiryDate string `json:"expiry_date" binding:"required"`
	Quantity   *int   `json:"quantity" binding:"required"`
}

// itemUpdate fields left nil keep their stored value.
type itemUpdate struct {
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	ItemName   *string `json:"item_name"`
	ExpiryDate *string `json:"expiry_date"`
	Quantity   *int    `json:"quantity"`
}

func (u itemUpdate) set() (map[string]any, error) {
	set := map[string]any{}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.ItemName != nil {
		set["item_name"] = *u.ItemName
	}
	if u.ExpiryDate != nil {
		if _, err := engine.ParseTime(*u.ExpiryDate); err != nil {
			return nil, fmt.Errorf("%w: expiry_date: %v", errValidation, err)
		}
		set["expiry_date"] = *u.ExpiryDate
	}
	if u.Quantity != nil {
		set["quantity"] = *u.Quantity
	}
	return set, nil
}

func (h *Handler) ListItems(c *gin.Context) {
	ctx, span, done := h.begin(c, "ListItems")
	defer done()

	docs, err := h.Store.Find(ctx, engine.ItemCollection, nil)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapItems(docs)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetItem(c *gin.Context) {
	ctx, span, done := h.begin(c, "GetItem")
	defer done()

	id, err := pathID(c, span)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	doc, err := h.Store.FindOne(ctx, engine.ItemCollection, id)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapItem(doc)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// itemFilter reads email, quantity, insert_date and expiry_date from the query string.
func itemFilter(c *gin.Context) (*engine.Filter, error) {
	f := engine.NewFilter()
	if v := c.Query("email"); v != "" {
		f.Eq("email", v)
	}
	if v := c.Query("quantity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: quantity must be an integer", errValidation)
		}
		f.Gte("quantity", n)
	}
	for _, field := range []string{"insert_date", "expiry_date"} {
		v := c.Query(field)
		if v == "" {
			continue
		}
		t, err := engine.ParseTime(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errValidation, field, err)
		}
		f.Gte(field, t)
	}
	return f, nil
}

func (h *Handler) FilterItems(c *gin.Context) {
	ctx, span, done := h.begin(c, "FilterItems")
	defer done()

	f, err := itemFilter(c)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	docs, err := h.Store.Find(ctx, engine.ItemCollection, f)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapItems(docs)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateItem(c *gin.Context) {
	ctx, span, done := h.begin(c, "CreateItem")
	defer done()

	var input itemCreate
	if err := bindJSON(c, &input); err != nil {
		h.fail(c, span, err)
		return
	}
	if _, err := engine.ParseTime(input.ExpiryDate); err != nil {
		h.fail(c, span, fmt.Errorf("%w: expiry_date: %v", errValidation, err))
		return
	}

	id := engine.NewID()
	doc, err := engine.NewDocument(map[string]any{
		"email":       input.Email,
		"name":        input.Name,
		"item_name":   input.ItemName,
		"quantity":    *input.Quantity,
		"expiry_date": input.ExpiryDate,
		"insert_date": engine.Timestamp(h.now()),
	})
	if err != nil {
		h.fail(c, span, err)
		return
	}
	if err := h.Store.InsertOne(ctx, engine.ItemCollection, id, doc); err != nil {
		h.fail(c, span, err)
		return
	}
	c.Header("Location", "/item/"+id.String())

	if h.StrictCreate {
		created, err := h.Store.FindOne(ctx, engine.ItemCollection, id)
		if err != nil {
			h.fail(c, span, err)
			return
		}
		out, err := schema.MapItem(created)
		if err != nil {
			h.fail(c, span, err)
			return
		}
		c.JSON(http.StatusCreated, out)
		return
	}

	docs, err := h.Store.Find(ctx, engine.ItemCollection, nil)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapItems(docs)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateItemDetails applies the fields present in the body. insert_date is never touched.
func (h *Handler) UpdateItemDetails(c *gin.Context) {
	ctx, span, done := h.begin(c, "UpdateItemDetails")
	defer done()

	id, err := pathID(c, span)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	var input itemUpdate
	if err := bindJSON(c, &input); err != nil {
		h.fail(c, span, err)
		return
	}
	set, err := input.set()
	if err != nil {
		h.fail(c, span, err)
		return
	}

	if _, err := h.Store.FindOne(ctx, engine.ItemCollection, id); err != nil {
		h.fail(c, span, err)
		return
	}
	if len(set) > 0 {
		if err := h.Store.UpdateOne(ctx, engine.ItemCollection, id, set); err != nil {
			h.fail(c, span, err)
			return
		}
	}
	updated, err := h.Store.FindOne(ctx, engine.ItemCollection, id)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapItem(updated)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CountItemsByEmail answers [{email, count}] sorted by email.
func (h *Handler) CountItemsByEmail(c *gin.Context) {
	ctx, span, done := h.begin(c, "CountItemsByEmail")
	defer done()

	groups, err := h.Store.CountBy(ctx, engine.ItemCollection, "email")
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out := schema.MapGroups(groups)
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	ctx, span, done := h.begin(c, "DeleteItem")
	defer done()

	id, err := pathID(c, span)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	doc, err := h.Store.DeleteOne(ctx, engine.ItemCollection, id)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	out, err := schema.MapItem(doc)
	if err != nil {
		h.fail(c, span, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
