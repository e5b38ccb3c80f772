package handler

import (
	"net/http"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/membership"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type CollectionInput struct {
	Name        string `json:"name" binding:"required" example:"Backlog"`
	Description string `json:"description" example:"Games I still need to play"`
}

// CollectionUpdateInput changes a collection. A blank name is ignored and an
// omitted description is left unchanged.
type CollectionUpdateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type CollectionResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newCollectionResponse(c models.Collection) CollectionResponse {
	return CollectionResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func newCollectionResponses(cs []models.Collection) []CollectionResponse {
	out := make([]CollectionResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCollectionResponse(c))
	}
	return out
}

// AnnotationsInput carries a membership's personal fields. Omitted rating or
// notes are left unchanged on update.
type AnnotationsInput struct {
	Rating           *int    `json:"rating" example:"8"`
	Notes            *string `json:"notes" example:"Loved the soundtrack"`
	Completed        bool    `json:"completed"`
	CurrentlyPlaying bool    `json:"currently_playing"`
}

func (in AnnotationsInput) annotations() membership.Annotations {
	return membership.Annotations{
		Rating:           in.Rating,
		Notes:            in.Notes,
		Completed:        in.Completed,
		CurrentlyPlaying: in.CurrentlyPlaying,
	}
}

type AddGameInput struct {
	GameID uint `json:"game_id" binding:"required" example:"1"`
	AnnotationsInput
}

type MembershipResponse struct {
	CollectionID     uint          `json:"collection_id"`
	CollectionName   string        `json:"collection_name,omitempty"`
	Game             *GameResponse `json:"game,omitempty"`
	GameID           uint          `json:"game_id"`
	DateAdded        time.Time     `json:"date_added"`
	Rating           *int          `json:"rating,omitempty"`
	Notes            *string       `json:"notes,omitempty"`
	Completed        bool          `json:"completed"`
	CurrentlyPlaying bool          `json:"currently_playing"`
	UpdatedAt        *time.Time    `json:"updated_at,omitempty"`
}

func newMembershipResponse(m models.Membership) MembershipResponse {
	res := MembershipResponse{
		CollectionID:     m.CollectionID,
		CollectionName:   m.Collection.Name,
		GameID:           m.GameID,
		DateAdded:        m.DateAdded,
		Rating:           m.Rating,
		Notes:            m.Notes,
		Completed:        m.Completed,
		CurrentlyPlaying: m.CurrentlyPlaying,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Game.ID != 0 {
		g := newGameResponse(m.Game)
		res.Game = &g
	}
	return res
}

// endregion

// region --- Collection Handlers ---

// CreateCollection godoc
// @Summary      Create a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CollectionInput true "Collection Info"
// @Success      201 {object} CollectionResponse
// @Failure      400 {object} ErrorResponse
// @Router       /collections [post]
func (h *Handler) CreateCollection(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var input CollectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col, err := h.memberships.CreateCollection(c.Request.Context(), id, membership.CollectionInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCollectionResponse(*col))
}

// GetCollections godoc
// @Summary      List the caller's collections
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} CollectionResponse
// @Router       /collections [get]
func (h *Handler) GetCollections(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	cs, err := h.memberships.ListCollections(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCollectionResponses(cs))
}

// GetCollectionByID godoc
// @Summary      Get one of the caller's collections
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Collection ID"
// @Success      200 {object} CollectionResponse
// @Failure      404 {object} ErrorResponse
// @Router       /collections/{id} [get]
func (h *Handler) GetCollectionByID(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	col, err := h.memberships.GetCollection(c.Request.Context(), id, collectionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCollectionResponse(*col))
}

// UpdateCollection godoc
// @Summary      Update a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                   true "Collection ID"
// @Param        input body CollectionUpdateInput true "Fields to change"
// @Success      200 {object} CollectionResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /collections/{id} [put]
func (h *Handler) UpdateCollection(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input CollectionUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col, err := h.memberships.UpdateCollection(c.Request.Context(), id, collectionID, membership.CollectionUpdate{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCollectionResponse(*col))
}

// DeleteCollection godoc
// @Summary      Delete a collection
// @Description  Soft-deletes the collection and every game membership in it.
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Collection ID"
// @Success      200 {object} map[string]string "{"message": "Collection deleted"}"
// @Failure      403 {object} ErrorResponse
// @Router       /collections/{id} [delete]
func (h *Handler) DeleteCollection(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.memberships.DeleteCollection(c.Request.Context(), id, collectionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted"})
}

// endregion

// region --- Membership Handlers ---

// GetCollectionGames godoc
// @Summary      List the games in a collection
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Collection ID"
// @Success      200 {array} MembershipResponse
// @Failure      404 {object} ErrorResponse
// @Router       /collections/{id}/games [get]
func (h *Handler) GetCollectionGames(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ms, err := h.memberships.ListMemberships(c.Request.Context(), id, collectionID)
	if err != nil {
		respondError(c, err)
		return
	}
	res := make([]MembershipResponse, 0, len(ms))
	for _, m := range ms {
		res = append(res, newMembershipResponse(m))
	}
	c.JSON(http.StatusOK, res)
}

// AddGameToCollection godoc
// @Summary      Add a game to a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int          true "Collection ID"
// @Param        input body AddGameInput true "Game and annotations"
// @Success      201 {object} MembershipResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the collection owner"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Game already in collection"
// @Router       /collections/{id}/games [post]
func (h *Handler) AddGameToCollection(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input AddGameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.memberships.AddGame(c.Request.Context(), id, collectionID, input.GameID, input.annotations())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newMembershipResponse(*m))
}

// GetCollectionGame godoc
// @Summary      Get a game's membership in a collection
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Collection ID"
// @Param        gameId path int true "Game ID"
// @Success      200 {object} MembershipResponse
// @Failure      404 {object} ErrorResponse
// @Router       /collections/{id}/games/{gameId} [get]
func (h *Handler) GetCollectionGame(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	gameID, ok := pathID(c, "gameId")
	if !ok {
		return
	}
	m, err := h.memberships.GetMembership(c.Request.Context(), id, collectionID, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMembershipResponse(*m))
}

// UpdateCollectionGame godoc
// @Summary      Update a game's annotations in a collection
// @Description  Rating and notes change only when present; the flags are always written.
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int              true "Collection ID"
// @Param        gameId path int              true "Game ID"
// @Param        input  body AnnotationsInput true "Annotations"
// @Success      200 {object} MembershipResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /collections/{id}/games/{gameId} [put]
func (h *Handler) UpdateCollectionGame(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	gameID, ok := pathID(c, "gameId")
	if !ok {
		return
	}
	var input AnnotationsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.memberships.UpdateGame(c.Request.Context(), id, collectionID, gameID, input.annotations())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMembershipResponse(*m))
}

// RemoveGameFromCollection godoc
// @Summary      Remove a game from a collection
// @Description  Removing a game that is not in the collection succeeds.
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Collection ID"
// @Param        gameId path int true "Game ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Router       /collections/{id}/games/{gameId} [delete]
func (h *Handler) RemoveGameFromCollection(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	gameID, ok := pathID(c, "gameId")
	if !ok {
		return
	}
	if err := h.memberships.RemoveGame(c.Request.Context(), id, collectionID, gameID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetGameCollections godoc
// @Summary      Collections containing a game
// @Description  The caller's collections that hold the game.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {array} CollectionResponse
// @Router       /games/{id}/collections [get]
func (h *Handler) GetGameCollections(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	gameID, ok := pathID(c, "id")
	if !ok {
		return
	}
	cs, err := h.memberships.ListCollectionsContaining(c.Request.Context(), id, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCollectionResponses(cs))
}

// endregion
