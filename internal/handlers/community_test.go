package handlers_test

import (
	"net/http"
	"testing"

	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupRequiresAuth(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/community/groups", map[string]any{
		"name": "Delhi Green Warriors", "description": "Planting trees across Delhi",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, s.count(t, &models.Group{}))
}

func TestCreateGroupSlugConflict(t *testing.T) {
	s := newServer(t, nil)
	owner, token := s.user(t, "johndoe", types.RoleUser)

	body := map[string]any{
		"name":        "Delhi Green Warriors",
		"description": "Planting trees across Delhi",
		"city":        "New Delhi",
		"category":    "Tree Planting",
	}
	w := s.do(t, http.MethodPost, "/api/community/groups", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var group models.Group
	decodeData(t, w, &group)
	assert.Equal(t, "delhi-green-warriors", group.Slug)
	assert.True(t, group.IsPublic)
	require.NotNil(t, group.CreatedBy)
	assert.Equal(t, owner.Username, group.CreatedBy.Username)
	require.NotNil(t, group.Count)
	assert.EqualValues(t, 1, group.Count.Members)

	body["name"] = "Delhi green warriors!"
	w = s.do(t, http.MethodPost, "/api/community/groups", body, token)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "A group with this name already exists", decode(t, w).Error)
	assert.EqualValues(t, 1, s.count(t, &models.Group{}))
}

func TestCreateGroupValidation(t *testing.T) {
	s := newServer(t, nil)
	_, token := s.user(t, "johndoe", types.RoleUser)

	w := s.do(t, http.MethodPost, "/api/community/groups", map[string]any{"name": "Ok name", "description": "short"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"description"}, fieldNames(decode(t, w).Errors))
	assert.Zero(t, s.count(t, &models.Group{}))
}

func TestGroupListingIsCachedAndInvalidated(t *testing.T) {
	s := newServer(t, nil)
	_, token := s.user(t, "johndoe", types.RoleUser)

	create := func(name string) {
		w := s.do(t, http.MethodPost, "/api/community/groups", map[string]any{
			"name": name, "description": "A community for climate action",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	create("Mumbai Sustainability Network")

	w := s.do(t, http.MethodGet, "/api/community/groups?limit=10", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = s.do(t, http.MethodGet, "/api/community/groups?limit=10", nil, "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	create("Bangalore Lake Savers")

	w = s.do(t, http.MethodGet, "/api/community/groups?limit=10", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var list struct {
		Groups []models.Group `json:"groups"`
		Meta   types.Meta     `json:"meta"`
	}
	decodeData(t, w, &list)
	assert.Len(t, list.Groups, 2)
	assert.EqualValues(t, 2, list.Meta.Total)
	assert.Equal(t, 10, list.Meta.Limit)
	assert.Equal(t, 1, list.Meta.TotalPages)

	w = s.do(t, http.MethodGet, "/api/community/groups?limit=500", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"limit"}, fieldNames(decode(t, w).Errors))
}

func TestGroupPostsRequireMembership(t *testing.T) {
	s := newServer(t, nil)
	_, owner := s.user(t, "owner", types.RoleUser)
	_, other := s.user(t, "visitor", types.RoleUser)

	w := s.do(t, http.MethodPost, "/api/community/groups", map[string]any{
		"name": "Delhi Green Warriors", "description": "Planting trees across Delhi",
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code)
	var group models.Group
	decodeData(t, w, &group)

	post := map[string]any{
		"groupId": group.ID,
		"title":   "Tree planting drive",
		"content": "Join us this Sunday at Lodhi Garden.",
		"tags":    []string{"trees", "volunteering"},
	}

	w = s.do(t, http.MethodPost, "/api/posts", post, other)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You must be a member of this group to post", decode(t, w).Message)
	assert.Zero(t, s.count(t, &models.Post{}))

	w = s.do(t, http.MethodPost, "/api/community/groups/"+group.ID+"/join", nil, other)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/community/groups/"+group.ID+"/join", nil, other)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/posts", post, other)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Post
	decodeData(t, w, &created)
	require.NotNil(t, created.Group)
	assert.Equal(t, "delhi-green-warriors", created.Group.Slug)
	assert.Equal(t, []string{"trees", "volunteering"}, []string(created.Tags))

	w = s.do(t, http.MethodPost, "/api/posts/"+created.ID+"/comments", map[string]any{"content": "Count me in!"}, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/posts/"+created.ID+"/comments", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var comments struct {
		Comments []models.Comment `json:"comments"`
	}
	decodeData(t, w, &comments)
	require.Len(t, comments.Comments, 1)
	assert.Equal(t, "owner", comments.Comments[0].Author.Username)

	w = s.do(t, http.MethodGet, "/api/posts?groupId="+group.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var posts struct {
		Posts []models.Post `json:"posts"`
	}
	decodeData(t, w, &posts)
	require.Len(t, posts.Posts, 1)
	require.NotNil(t, posts.Posts[0].Count)
	assert.EqualValues(t, 1, posts.Posts[0].Count.Comments)

	w = s.do(t, http.MethodPost, "/api/community/groups/not-a-uuid/join", nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/posts?groupId=nope", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPledgeTransitions(t *testing.T) {
	s := newServer(t, nil)
	_, owner := s.user(t, "owner", types.RoleUser)
	_, stranger := s.user(t, "stranger", types.RoleUser)
	_, analyst := s.user(t, "analyst", types.RoleAnalyst)

	w := s.do(t, http.MethodPost, "/api/pledges", map[string]any{
		"pledgeType": "PLANT_TREES",
		"quantity":   10,
		"unit":       "trees",
		"startDate":  "2025-03-01",
		"endDate":    "2025-06-01",
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pledge models.EnvironmentalPledge
	decodeData(t, w, &pledge)
	assert.Equal(t, models.PledgeActive, pledge.Status)

	path := "/api/pledges/" + pledge.ID + "/status"
	status := func(token, to string) (int, models.EnvironmentalPledge) {
		w := s.do(t, http.MethodPatch, path, map[string]any{"status": to}, token)
		var p models.EnvironmentalPledge
		if w.Code == http.StatusOK {
			decodeData(t, w, &p)
		}
		return w.Code, p
	}

	code, _ := status(owner, models.PledgeVerified)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = status(stranger, models.PledgeCompleted)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = status(analyst, models.PledgeVerified)
	assert.Equal(t, http.StatusConflict, code, "ACTIVE cannot be verified")

	code, updated := status(owner, models.PledgeCompleted)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.PledgeCompleted, updated.Status)

	code, _ = status(owner, models.PledgeCompleted)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = status(owner, models.PledgeCancelled)
	assert.Equal(t, http.StatusConflict, code)

	code, updated = status(analyst, models.PledgeVerified)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.PledgeVerified, updated.Status)
	assert.NotNil(t, updated.VerifiedAt)

	code, _ = status(owner, "ACTIVE")
	assert.Equal(t, http.StatusBadRequest, code)

	w = s.do(t, http.MethodGet, "/api/pledges?status=VERIFIED", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Pledges []models.EnvironmentalPledge `json:"pledges"`
	}
	decodeData(t, w, &list)
	assert.Len(t, list.Pledges, 1)

	w = s.do(t, http.MethodGet, "/api/pledges", nil, stranger)
	decodeData(t, w, &list)
	assert.Empty(t, list.Pledges)
}

func TestCreatePledgeDates(t *testing.T) {
	s := newServer(t, nil)
	_, owner := s.user(t, "owner", types.RoleUser)

	w := s.do(t, http.MethodPost, "/api/pledges", map[string]any{
		"pledgeType": "SAVE_ENERGY", "quantity": 5, "unit": "kWh",
		"startDate": "2025-03-01", "endDate": "2025-02-01",
	}, owner)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"endDate"}, fieldNames(decode(t, w).Errors))

	w = s.do(t, http.MethodPost, "/api/pledges", map[string]any{
		"pledgeType": "SAVE_ENERGY", "quantity": 0, "unit": "kWh", "startDate": "yesterday",
	}, owner)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldNames(decode(t, w).Errors), "startDate")
}
