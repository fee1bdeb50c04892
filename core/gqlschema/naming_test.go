package gqlschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamingHelpers(t *testing.T) {
	assert.Equal(t, "users_Filter", filterName("users"))
	assert.Equal(t, "users_OrderByInput", orderByName("users"))
	assert.Equal(t, "users_Edge", edgeName("users"))
	assert.Equal(t, "users_Connection", connectionName("users"))
	assert.Equal(t, "users_CreateInput", createInputName("users"))
	assert.Equal(t, "users_UpdateInput", updateInputName("users"))
	assert.Equal(t, "users_DeleteInput", deleteInputName("users"))
	assert.Equal(t, "users_ChangeEvent", changeEventName("users"))
	assert.Equal(t, "users_SubscriptionData", subscriptionDataName("users"))
}

func TestPascal(t *testing.T) {
	assert.Equal(t, "UserStatus", pascal("user_status"))
	assert.Equal(t, "OrgAccount", pascal("org-account"))
}

func TestReverseFieldName(t *testing.T) {
	assert.Equal(t, "posts", reverseFieldName("posts"))
	assert.Equal(t, "comments", reverseFieldName("comment"))
}
