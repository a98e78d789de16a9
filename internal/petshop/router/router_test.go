package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/jobs/jobstest"
	"github.com/cuongbtq/petstore/internal/petshop/handler"
	"github.com/cuongbtq/petstore/internal/petshop/storage"
	"github.com/cuongbtq/petstore/internal/worker/tasks"
	"github.com/cuongbtq/petstore/shared/logger"
	"github.com/cuongbtq/petstore/shared/sqltest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router    *gin.Engine
	broker    *jobstest.Broker
	store     *jobstest.Store
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.NewNop().Logger
	pg := sqltest.Open(t, "../storage/testdata/schema.sql")
	facade, broker, store := jobstest.NewFacade()
	uploadDir := t.TempDir()

	r := SetupRouter(&handler.Dependencies{
		Logger:    log,
		Storage:   storage.NewStorage(pg, log),
		Jobs:      facade,
		UploadDir: uploadDir,
	}, pg)

	return &testEnv{router: r, broker: broker, store: store, uploadDir: uploadDir}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Petshop Service", body["service"])

	code, body = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
}

func TestVentaStockScenario(t *testing.T) {
	env := newTestEnv(t)

	code, producto := env.do(t, http.MethodPost, "/productos/", map[string]any{
		"nombre": "Alimento para Perros Premium",
		"precio": 29.99,
		"stock":  10,
	})
	require.Equal(t, http.StatusOK, code)
	id := producto["id"]

	code, venta := env.do(t, http.MethodPost, "/pos/venta/", map[string]any{
		"items": []map[string]any{{"producto_id": id, "cantidad": 4}},
	})
	require.Equal(t, http.StatusOK, code, venta)
	assert.Equal(t, "Venta registrada y stock actualizado.", venta["status"])
	items := venta["items"].([]any)
	assert.Equal(t, float64(6), items[0].(map[string]any)["stock_restante"])

	code, body := env.do(t, http.MethodPost, "/pos/venta/", map[string]any{
		"items": []map[string]any{{"producto_id": id, "cantidad": 10}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Stock insuficiente. Stock actual: 6, cantidad solicitada: 10", body["detail"])

	code, got := env.do(t, http.MethodGet, "/productos/1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(6), got["stock"])
}

func TestVentaValidation(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/pos/venta/", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/pos/venta/", map[string]any{
		"items": []map[string]any{{"producto_id": 1, "cantidad": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := env.do(t, http.MethodPost, "/pos/venta/", map[string]any{
		"items": []map[string]any{{"producto_id": 5, "cantidad": 1}},
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Producto not found", body["detail"])
}

func TestCategoriaDuplicate(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/categorias/", map[string]any{"nombre": "Juguetes"})
	require.Equal(t, http.StatusOK, code)

	code, body := env.do(t, http.MethodPost, "/categorias/", map[string]any{"nombre": "Juguetes"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["detail"], "already registered")
}

func TestProveedorProductos(t *testing.T) {
	env := newTestEnv(t)

	code, prov := env.do(t, http.MethodPost, "/proveedores/", map[string]any{"nombre": "PetFood SA", "telefono": "555-0101"})
	require.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodPost, "/productos/", map[string]any{
		"nombre": "Juguete Pelota", "precio": "8.50", "stock": 25, "proveedor_id": prov["id"],
	})
	require.Equal(t, http.StatusOK, code)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/proveedores/1/productos", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var productos []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &productos))
	require.Len(t, productos, 1)
	assert.Equal(t, "PetFood SA", productos[0]["proveedor"].(map[string]any)["nombre"])

	code, body := env.do(t, http.MethodGet, "/proveedores/9/productos", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Proveedor not found", body["detail"])
}

func uploadRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestInventoryUploadScenario(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.serve(t, uploadRequest(t, "/upload-inventario/", "inventario.xlsx", []byte("sku,stock\nPET001,50\n")))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "processing", body["status"])
	assert.Equal(t, "inventario.xlsx", body["filename"])
	assert.Equal(t, "excel", body["file_type"])
	taskID, _ := body["task_id"].(string)
	require.NotEmpty(t, taskID)

	code, status := env.do(t, http.MethodGet, "/tasks/"+taskID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"status": "processing", "task_id": taskID}, status)

	msgs := env.broker.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, jobs.OpInventoryFileProcessing, msgs[0].Operation)

	var savedPath string
	require.NoError(t, json.Unmarshal(msgs[0].Arguments[0], &savedPath))
	_, err := os.Stat(savedPath)
	require.NoError(t, err)

	// stand in for the worker
	result, err := tasks.NewRegistry().Run(context.Background(), taskID, msgs[0].Operation, msgs[0].Arguments)
	require.NoError(t, err)
	require.NoError(t, env.store.Complete(context.Background(), taskID, result))

	code, status = env.do(t, http.MethodGet, "/tasks/"+taskID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", status["status"])
	res := status["result"].(map[string]any)
	assert.Equal(t, float64(3), res["total_processed"])
	assert.Equal(t, "excel", res["file_type"])
}

func TestUploadRequiresFile(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/upload-inventario/", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "file is required", body["detail"])
}

func TestDispatchFailureIsErrorPayload(t *testing.T) {
	env := newTestEnv(t)
	env.broker.SetConnected(false)

	code, body := env.do(t, http.MethodPost, "/reportes/inventario/?store_id=1&report_type=stock_low", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "error", body["status"])
	assert.NotEmpty(t, body["error"])
	assert.NotContains(t, body, "task_id")
}

func TestUploadDispatchFailureRemovesFile(t *testing.T) {
	env := newTestEnv(t)
	env.broker.SetConnected(false)

	code, body := env.serve(t, uploadRequest(t, "/upload-inventario/", "stock.csv", []byte("sku,stock\n")))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "stock.csv", body["filename"])

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInventoryReport(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/reportes/inventario/?store_id=1&report_type=sales_summary", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "processing", body["status"])
	assert.Equal(t, float64(1), body["store_id"])
	assert.Equal(t, "sales_summary", body["report_type"])

	msgs := env.broker.Messages()
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `1`, string(msgs[0].Arguments[0]))
	assert.JSONEq(t, `"sales_summary"`, string(msgs[0].Arguments[1]))

	code, _ = env.do(t, http.MethodPost, "/reportes/inventario/", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/reportes/inventario/?store_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestInventoryReportStoreZero(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/reportes/inventario/?store_id=0", nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "processing", body["status"])
	assert.Equal(t, float64(0), body["store_id"])
	assert.Equal(t, "stock_low", body["report_type"])

	msgs := env.broker.Messages()
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `0`, string(msgs[0].Arguments[0]))
}

func TestPriceUpdates(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/productos/precios/", map[string]any{
		"updates": []map[string]any{
			{"sku": "PET001", "old_price": 29.99, "new_price": 31.50},
			{"sku": "PET002"},
		},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "processing", body["status"])
	assert.Equal(t, float64(2), body["total_updates"])

	msgs := env.broker.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, jobs.OpPriceBatchUpdate, msgs[0].Operation)
	require.Len(t, msgs[0].Arguments, 1)
}

func TestUnknownTaskReadsAsProcessing(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/tasks/test-task-123", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "processing", body["status"])
	assert.Equal(t, "test-task-123", body["task_id"])
}
