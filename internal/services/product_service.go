package services

import (
	"errors"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/terraincognita07/autobuyer/internal/models"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductInvalidURL  = errors.New("product url invalid")
	ErrProductInvalidName = errors.New("product name invalid")
)

var galaxusProductIDPattern = regexp.MustCompile(`-([0-9]{7,})\b`)

type ProductRepository interface {
	ListByUser(userID uint) ([]models.Product, error)
	FindByIDForUser(productID uint, userID uint) (models.Product, error)
	Create(product *models.Product) error
	SetActive(productID uint, userID uint, active bool) (bool, error)
	DeleteForUser(productID uint, userID uint) (bool, error)
}

type ProductInput struct {
	URL      string
	Name     string
	ImageURL string
	Price    string
}

type ProductService struct {
	products ProductRepository
}

func NewProductService(products ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// ParseGalaxusProductID extracts the retailer's numeric product id from a
// galaxus product link. It returns "" for any other link.
func ParseGalaxusProductID(rawURL string) string {
	if !strings.Contains(rawURL, "galaxus") || !strings.Contains(rawURL, "product") {
		return ""
	}
	matches := galaxusProductIDPattern.FindStringSubmatch(rawURL)
	if matches == nil {
		return ""
	}
	return matches[1]
}

// NormalizeProductURL accepts absolute http(s) links only.
func NormalizeProductURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return "", ErrProductInvalidURL
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", ErrProductInvalidURL
	}
	return parsed.String(), nil
}

func (service *ProductService) Add(userID uint, input ProductInput, now time.Time) (models.Product, error) {
	productURL, err := NormalizeProductURL(input.URL)
	if err != nil {
		return models.Product{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = productNameFromURL(productURL)
	}
	if name == "" || len([]rune(name)) > 200 {
		return models.Product{}, ErrProductInvalidName
	}

	product := models.Product{
		UserID:            userID,
		URL:               productURL,
		Name:              name,
		RetailerProductID: ParseGalaxusProductID(productURL),
		ImageURL:          strings.TrimSpace(input.ImageURL),
		Price:             strings.TrimSpace(input.Price),
		IsActive:          true,
		AddedAt:           now.UTC(),
	}
	if err := service.products.Create(&product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (service *ProductService) List(userID uint) ([]models.Product, error) {
	return service.products.ListByUser(userID)
}

func (service *ProductService) SetActive(userID uint, productID uint, active bool) (models.Product, error) {
	updated, err := service.products.SetActive(productID, userID, active)
	if err != nil {
		return models.Product{}, err
	}
	if !updated {
		return models.Product{}, ErrProductNotFound
	}

	product, err := service.products.FindByIDForUser(productID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return product, nil
}

func (service *ProductService) Delete(userID uint, productID uint) error {
	deleted, err := service.products.DeleteForUser(productID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProductNotFound
	}
	return nil
}

// productNameFromURL turns the last path segment of a shop link into a
// readable name, dropping a trailing numeric id.
func productNameFromURL(productURL string) string {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return ""
	}
	slug := path.Base(strings.TrimSuffix(parsed.Path, "/"))
	if slug == "." || slug == "/" {
		return ""
	}
	slug = galaxusProductIDPattern.ReplaceAllString(slug, "")
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for index, word := range words {
		words[index] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
