package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/platoo/order-service/models"
	"github.com/platoo/order-service/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	errMenuNotFound = errors.New("Menu item not found")
	errInvalidPrice = errors.New("price must be zero or more")
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// catalogItem is the wire form other services read. Price goes out as a JSON
// number.
type catalogItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"is_available"`
}

func toCatalogItem(m models.Menu) catalogItem {
	entry := m.ToCatalogEntry()
	return catalogItem{
		ID:          entry.ID,
		Name:        entry.Name,
		Description: entry.Description,
		Price:       entry.Price.Round(2).InexactFloat64(),
		IsAvailable: entry.IsAvailable,
	}
}

type createMenuRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	IsAvailable *bool            `json:"is_available"`
}

type updateMenuRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
}

// GetAllMenus -> GET /items, available items only
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	var menus []models.Menu
	if err := mc.DB.WithContext(c.Request.Context()).Where("is_available = ?", true).Order("id").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	items := make([]catalogItem, 0, len(menus))
	for _, m := range menus {
		items = append(items, toCatalogItem(m))
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetMenuByID -> GET /items/:id, answered without the envelope
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	menu, ok := mc.findMenu(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toCatalogItem(menu))
}

// CreateMenu -> POST /items
func (mc *MenuController) CreateMenu(c *gin.Context) {
	var body createMenuRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Price.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, errInvalidPrice)
		return
	}

	menu := models.Menu{
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		Price:       body.Price.Round(2).InexactFloat64(),
		IsAvailable: body.IsAvailable == nil || *body.IsAvailable,
	}
	err := mc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&menu).Error; err != nil {
			return err
		}
		// is_available defaults to true in the schema, so false needs its own write.
		if !menu.IsAvailable {
			return tx.Model(&menu).Update("is_available", false).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu item created", toCatalogItem(menu))
}

// UpdateMenu -> PATCH /items/:id
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	menu, ok := mc.findMenu(c)
	if !ok {
		return
	}

	var body updateMenuRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Price != nil {
		if body.Price.IsNegative() {
			utils.RespondError(c, http.StatusBadRequest, errInvalidPrice)
			return
		}
		updates["price"] = body.Price.Round(2).InexactFloat64()
	}
	if body.IsAvailable != nil {
		updates["is_available"] = *body.IsAvailable
	}

	if len(updates) > 0 {
		if err := mc.DB.WithContext(c.Request.Context()).Model(&menu).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	if err := mc.DB.WithContext(c.Request.Context()).First(&menu, menu.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item updated", toCatalogItem(menu))
}

// findMenu loads the item named by :id. Ids that are not numbers cannot exist
// and are reported as not found.
func (mc *MenuController) findMenu(c *gin.Context) (models.Menu, bool) {
	var menu models.Menu
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusNotFound, errMenuNotFound)
		return menu, false
	}

	if err := mc.DB.WithContext(c.Request.Context()).First(&menu, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errMenuNotFound)
			return menu, false
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return menu, false
	}
	return menu, true
}
