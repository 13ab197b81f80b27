package server

import (
	"net/http"
	"testing"

	inmemory "taskboard/repository/inmemory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountAndTaskFlow(t *testing.T) {
	store := inmemory.NewStorage()
	api := newTestAPI(t, store, store)

	w := performRequest(api, http.MethodPost, "/api/register",
		gin.H{"name": "Ann", "email": "ann@x.com", "password": "Secret1!"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(api, http.MethodPost, "/api/register",
		gin.H{"name": "Ann", "email": "ann@x.com", "password": "Secret1!"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgEmailInUse, decodeBody(t, w)["message"])

	w = performRequest(api, http.MethodPost, "/api/login",
		gin.H{"email": "ann@x.com", "password": "Secret1!"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = performRequest(api, http.MethodPost, "/api/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	user, _ := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "Ann", user["name"])

	w = performRequest(api, http.MethodPost, "/api/addtask",
		gin.H{"taskname": "Buy milk", "desc": "2%", "priority": "high"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	task, _ := decodeBody(t, w)["task"].(map[string]any)
	id, _ := task["_id"].(string)
	require.Len(t, id, 24)

	w = performRequest(api, http.MethodPost, "/api/alltasks", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list, _ := decodeBody(t, w)["tasks"].([]any)
	assert.Len(t, list, 1)

	w = performRequest(api, http.MethodPut, "/api/updatetask/"+id,
		gin.H{"taskname": "Buy oat milk", "desc": "1L", "priority": "low"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(api, http.MethodPost, "/api/singletask/"+id, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	task, _ = decodeBody(t, w)["task"].(map[string]any)
	assert.Equal(t, "Buy oat milk", task["taskname"])
	assert.Equal(t, "low", task["priority"])

	w = performRequest(api, http.MethodDelete, "/api/deletetask/"+id, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	w = performRequest(api, http.MethodDelete, "/api/deletetask/"+id, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = performRequest(api, http.MethodPost, "/api/singletask/"+id, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(api, http.MethodPost, "/api/alltasks", nil, token)
	list, _ = decodeBody(t, w)["tasks"].([]any)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPasswordResetFlow(t *testing.T) {
	store := inmemory.NewStorage()
	api := newTestAPI(t, store, store)

	w := performRequest(api, http.MethodPost, "/api/register",
		gin.H{"name": "Ann", "email": "ann@x.com", "password": "Secret1!"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(api, http.MethodPost, "/api/forgotpassword", gin.H{"email": "ann@x.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(api, http.MethodPost, "/api/resetpassword",
		gin.H{"email": "ann@x.com", "password": "NewSecret2@"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(api, http.MethodPost, "/api/login",
		gin.H{"email": "ann@x.com", "password": "Secret1!"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidCredentials, decodeBody(t, w)["message"])

	w = performRequest(api, http.MethodPost, "/api/login",
		gin.H{"email": "ann@x.com", "password": "NewSecret2@"}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
}
