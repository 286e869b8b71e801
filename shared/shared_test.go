package shared_test

import (
	"context"
	"errors"
	"testing"

	"spacebook/shared"
	"spacebook/shared/cache/mocks"
	"spacebook/shared/constant"
	"spacebook/shared/dto"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestConvertStringToBool(t *testing.T) {
	assert.Nil(t, shared.ConvertStringToBool(""))
	assert.Nil(t, shared.ConvertStringToBool("maybe"))
	assert.True(t, *shared.ConvertStringToBool("true"))
	assert.False(t, *shared.ConvertStringToBool("0"))
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		total, limit, expected int
	}{
		{0, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 0, 1},
		{99, 33, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
	}
}

func TestTransformFields(t *testing.T) {
	name := "Quiet Room"
	capacity := 0

	type update struct {
		Name     *string `db:"name"`
		Capacity *int    `db:"capacity"`
		Status   string  `db:"status"`
		Skipped  string
	}

	fields := shared.TransformFields(update{Name: &name, Capacity: &capacity, Skipped: "x"}, "ada@example.com")

	assert.Equal(t, "Quiet Room", fields["name"])
	assert.Equal(t, 0, fields["capacity"])
	assert.NotContains(t, fields, "status")
	assert.NotContains(t, fields, "Skipped")
	assert.Equal(t, "ada@example.com", fields[constant.FieldModifiedBy])
	assert.Contains(t, fields, constant.FieldModifiedAt)
}

func TestFilterByID(t *testing.T) {
	filter := shared.FilterByID("r-1", "id", "resources")

	where, args := filter.GetWhereClause()

	assert.Equal(t, "(resources.id = :id)", where)
	assert.Equal(t, "r-1", args["id"])
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "availability", shared.BuildCacheKey("availability"))
	assert.Equal(t, "availability:r-1:2025-03-03", shared.BuildCacheKey("availability", "r-1", "2025-03-03"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "name", SortDir: "ASC"}
	filter := dto.FilterGroup{}.And(
		dto.Filter{Field: "status", Value: "published", Operator: dto.FilterOperatorEq},
		dto.Filter{Field: "floor_map_id", Value: "f-1", Operator: dto.FilterOperatorEq},
	)

	first := shared.BuildCacheKeyWithQuery("resources", params, filter)
	second := shared.BuildCacheKeyWithQuery("resources", params, filter)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "floor_map_id=f-1&status=published")

	params.Page = 2
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery("resources", params, filter))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	redisCache.EXPECT().Clear(gomock.Any(), "availability:r-1*").Return(nil)
	shared.InvalidateCaches(context.Background(), redisCache, "availability:r-1")

	redisCache.EXPECT().Clear(gomock.Any(), "resources*").Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), redisCache, "resources")
}
