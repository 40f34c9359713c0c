package mongodb

import (
	"testing"

	"github.com/estately/estate-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildListingQuery_EmptyFilterMatchesAll(t *testing.T) {
	query := buildListingQuery(domain.Filter{})
	assert.Empty(t, query)
}

func TestBuildListingQuery_OmittedFieldsAbsent(t *testing.T) {
	query := buildListingQuery(domain.Filter{City: "Almaty"})

	assert.Equal(t, "Almaty", query["city"])
	assert.NotContains(t, query, "type")
	assert.NotContains(t, query, "property")
	assert.NotContains(t, query, "bedrooms")
	assert.NotContains(t, query, "price")
}

func TestBuildListingQuery_AllPredicates(t *testing.T) {
	bedrooms := int32(2)
	minPrice, maxPrice := int64(100000), int64(300000)
	query := buildListingQuery(domain.Filter{
		City:     "Astana",
		Type:     domain.TypeSale,
		Property: "apartment",
		Bedrooms: &bedrooms,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	})

	assert.Equal(t, "Astana", query["city"])
	assert.Equal(t, "sale", query["type"])
	assert.Equal(t, "apartment", query["property"])
	assert.Equal(t, int32(2), query["bedrooms"])

	price, ok := query["price"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, int64(100000), price["$gte"])
	assert.Equal(t, int64(300000), price["$lte"])
}

func TestBuildListingQuery_PriceBoundsInclusive(t *testing.T) {
	maxPrice := int64(300000)
	query := buildListingQuery(domain.Filter{MaxPrice: &maxPrice})

	price, ok := query["price"].(bson.M)
	require.True(t, ok)
	// $lte keeps a listing priced exactly at the bound in the result set.
	assert.Equal(t, int64(300000), price["$lte"])
	assert.NotContains(t, price, "$gte")
}

func TestBuildListingQuery_ZeroBedroomsIsAPredicate(t *testing.T) {
	bedrooms := int32(0)
	query := buildListingQuery(domain.Filter{Bedrooms: &bedrooms})
	assert.Equal(t, int32(0), query["bedrooms"])
}
