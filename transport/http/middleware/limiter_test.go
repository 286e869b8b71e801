package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"spacebook/config"
	otelMocks "spacebook/infras/otel/mocks"
	"spacebook/shared/cache"
	cacheMocks "spacebook/shared/cache/mocks"
	"spacebook/shared/constant"
	"spacebook/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		enable        bool
		stored        int
		getErr        error
		wantSave      bool
		wantCode      int
		wantRemaining string
	}{
		{name: "disabled", wantCode: http.StatusOK},
		{name: "first request", enable: true, getErr: cache.Nil, wantSave: true, wantCode: http.StatusOK, wantRemaining: "2"},
		{name: "within window", enable: true, stored: 1, wantSave: true, wantCode: http.StatusOK, wantRemaining: "1"},
		{name: "over the limit", enable: true, stored: 3, wantCode: http.StatusTooManyRequests},
		{name: "cache unavailable", enable: true, getErr: errors.New("dial tcp"), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redisCache := cacheMocks.NewMockRedisCache(gomock.NewController(t))

			cfg := &config.Config{}
			cfg.App.RateLimiter.Enable = tt.enable
			cfg.App.RateLimiter.MaxRequests = 3
			cfg.App.RateLimiter.WindowSeconds = 60

			if tt.enable {
				redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ string, out any) error {
					*(out.(*int)) = tt.stored

					return tt.getErr
				})
			}

			if tt.wantSave {
				redisCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), 60).Return(nil)
			}

			app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, redisCache)
			handler := app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bookings/mine", nil))

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantRemaining != "" {
				assert.Equal(t, tt.wantRemaining, rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
			}

			if tt.wantCode == http.StatusTooManyRequests {
				assert.Equal(t, "60", rec.Header().Get(constant.RequestHeaderRetryAfter))
			}
		})
	}
}
