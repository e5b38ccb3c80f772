package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/catalog"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// GameInput is the admin payload for creating a game.
type GameInput struct {
	Title           string `json:"title" binding:"required" example:"Hollow Knight"`
	ReleaseYear     int    `json:"release_year" binding:"required" example:"2017"`
	Description     string `json:"description"`
	Developer       string `json:"developer" example:"Team Cherry"`
	Publisher       string `json:"publisher" example:"Team Cherry"`
	ImageURL        string `json:"image_url"`
	MetacriticScore *int   `json:"metacritic_score" example:"87"`
	MetacriticURL   string `json:"metacritic_url"`
	FranchiseID     *uint  `json:"franchise_id"`
	PlatformIDs     []uint `json:"platform_ids"`
	GenreIDs        []uint `json:"genre_ids"`
}

// GameUpdateInput is the admin payload for updating a game. Omitted fields
// are left unchanged; franchise_id 0 detaches the franchise.
type GameUpdateInput struct {
	Title           *string `json:"title"`
	ReleaseYear     *int    `json:"release_year"`
	Description     *string `json:"description"`
	Developer       *string `json:"developer"`
	Publisher       *string `json:"publisher"`
	ImageURL        *string `json:"image_url"`
	MetacriticScore *int    `json:"metacritic_score"`
	MetacriticURL   *string `json:"metacritic_url"`
	FranchiseID     *uint   `json:"franchise_id"`
	PlatformIDs     []uint  `json:"platform_ids"`
	GenreIDs        []uint  `json:"genre_ids"`
}

type GameResponse struct {
	ID              uint          `json:"id"`
	Title           string        `json:"title"`
	ReleaseYear     int           `json:"release_year"`
	Description     string        `json:"description,omitempty"`
	Developer       string        `json:"developer,omitempty"`
	Publisher       string        `json:"publisher,omitempty"`
	ImageURL        string        `json:"image_url,omitempty"`
	MetacriticScore *int          `json:"metacritic_score,omitempty"`
	MetacriticURL   string        `json:"metacritic_url,omitempty"`
	Franchise       *TagResponse  `json:"franchise,omitempty"`
	Platforms       []TagResponse `json:"platforms"`
	Genres          []TagResponse `json:"genres"`
	DeletedAt       *time.Time    `json:"deleted_at,omitempty"`
}

func newGameResponse(game models.Game) GameResponse {
	res := GameResponse{
		ID:              game.ID,
		Title:           game.Title,
		ReleaseYear:     game.ReleaseYear,
		Description:     game.Description,
		Developer:       game.Developer,
		Publisher:       game.Publisher,
		ImageURL:        game.ImageURL,
		MetacriticScore: game.MetacriticScore,
		MetacriticURL:   game.MetacriticURL,
		Platforms:       make([]TagResponse, 0, len(game.Platforms)),
		Genres:          make([]TagResponse, 0, len(game.Genres)),
	}
	if game.Franchise != nil {
		res.Franchise = &TagResponse{ID: game.Franchise.ID, Name: game.Franchise.Name}
	}
	for _, p := range game.Platforms {
		res.Platforms = append(res.Platforms, TagResponse{ID: p.PlatformID, Name: p.Platform.Name})
	}
	for _, g := range game.Genres {
		res.Genres = append(res.Genres, TagResponse{ID: g.GenreID, Name: g.Genre.Name})
	}
	if game.DeletedAt.Valid {
		at := game.DeletedAt.Time
		res.DeletedAt = &at
	}
	return res
}

func newGameResponses(games []models.Game) []GameResponse {
	out := make([]GameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, newGameResponse(g))
	}
	return out
}

// PaginatedGameResponse defines the structure for a paginated list of games.
type PaginatedGameResponse struct {
	Data []GameResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// SortOption describes one catalog ordering for sort pickers.
type SortOption struct {
	Key   string `json:"key" example:"title_asc"`
	Label string `json:"label" example:"Title (A-Z)"`
}

// endregion

// region --- Admin Handlers ---

// CreateGame godoc
// @Summary      Create a new game
// @Description  Creates a new game and links it to the given platforms, genres and franchise.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/games [post]
func (h *Handler) CreateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.catalog.CreateGame(c.Request.Context(), catalog.GameInput{
		Title:           input.Title,
		ReleaseYear:     input.ReleaseYear,
		Description:     input.Description,
		Developer:       input.Developer,
		Publisher:       input.Publisher,
		ImageURL:        input.ImageURL,
		MetacriticScore: input.MetacriticScore,
		MetacriticURL:   input.MetacriticURL,
		FranchiseID:     input.FranchiseID,
		PlatformIDs:     input.PlatformIDs,
		GenreIDs:        input.GenreIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newGameResponse(*game))
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Updates the supplied fields of a game. Platform and genre lists replace the current links when present.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Game ID"
// @Param        input body      GameUpdateInput true  "Fields to change"
// @Success      200   {object}  GameResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Admin access required"
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /admin/games/{id} [put]
func (h *Handler) UpdateGame(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input GameUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.catalog.UpdateGame(c.Request.Context(), id, catalog.GameUpdate{
		Title:           input.Title,
		ReleaseYear:     input.ReleaseYear,
		Description:     input.Description,
		Developer:       input.Developer,
		Publisher:       input.Publisher,
		ImageURL:        input.ImageURL,
		MetacriticScore: input.MetacriticScore,
		MetacriticURL:   input.MetacriticURL,
		FranchiseID:     input.FranchiseID,
		PlatformIDs:     input.PlatformIDs,
		GenreIDs:        input.GenreIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newGameResponse(*game))
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Soft-deletes a game together with its platform and genre links.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game deleted"}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id} [delete]
func (h *Handler) DeleteGame(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteGame(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

// GetAllGames godoc
// @Summary      List games including deleted ones
// @Description  Same as GET /games, but include_deleted=true also returns soft-deleted games.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        include_deleted query bool false "Include soft-deleted games"
// @Success      200 {object} PaginatedGameResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin/games [get]
func (h *Handler) GetAllGames(c *gin.Context) {
	includeDeleted, _ := strconv.ParseBool(c.Query("include_deleted"))
	h.listGames(c, includeDeleted)
}

// endregion

// region --- Public Handlers ---

// GetGames godoc
// @Summary      Get a list of games
// @Description  Retrieves a filtered, sorted, paginated list of games.
// @Tags         games
// @Produce      json
// @Param        q            query     string  false  "Matches title, developer, publisher, franchise or description"
// @Param        platform_id  query     int     false  "Platform ID"
// @Param        genre_id     query     int     false  "Genre ID"
// @Param        franchise_id query     int     false  "Franchise ID"
// @Param        min_year     query     int     false  "Earliest release year"
// @Param        max_year     query     int     false  "Latest release year"
// @Param        sort         query     string  false  "title_asc, title_desc, year_asc, year_desc, rating_asc or rating_desc" default(title_asc)
// @Param        page         query     int     false  "Page number" default(1)
// @Param        page_size    query     int     false  "Items per page (1-50)" default(12)
// @Success      200 {object} PaginatedGameResponse
// @Router       /games [get]
func (h *Handler) GetGames(c *gin.Context) {
	h.listGames(c, false)
}

func (h *Handler) listGames(c *gin.Context, includeDeleted bool) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	result, err := h.planner.QueryGames(c.Request.Context(), catalog.Query{
		Term:           c.Query("q"),
		PlatformID:     queryUint(c, "platform_id"),
		GenreID:        queryUint(c, "genre_id"),
		FranchiseID:    queryUint(c, "franchise_id"),
		MinYear:        queryInt(c, "min_year"),
		MaxYear:        queryInt(c, "max_year"),
		Sort:           catalog.ParseSortKey(c.Query("sort")),
		Page:           page,
		PageSize:       pageSize,
		IncludeDeleted: includeDeleted,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newGameResponses(result.Games), result))
}

// GetSortOptions godoc
// @Summary      List catalog sort options
// @Tags         games
// @Produce      json
// @Success      200 {array} SortOption
// @Router       /games/sort-options [get]
func (h *Handler) GetSortOptions(c *gin.Context) {
	opts := make([]SortOption, 0, 6)
	for k := catalog.SortTitleAsc; k <= catalog.SortRatingDesc; k++ {
		opts = append(opts, SortOption{Key: k.String(), Label: k.DisplayName()})
	}
	c.JSON(http.StatusOK, opts)
}

// SearchGames godoc
// @Summary      Quick search
// @Description  Returns up to 20 games matching the search term.
// @Tags         games
// @Produce      json
// @Param        q query string true "Search term"
// @Success      200 {array} GameResponse
// @Router       /games/search [get]
func (h *Handler) SearchGames(c *gin.Context) {
	games, err := h.planner.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameResponses(games))
}

// GetTopRated godoc
// @Summary      Top rated games
// @Description  Returns this year's best-scored games and the all-time best, excluding this year's.
// @Tags         games
// @Produce      json
// @Param        count query int false "Games per list" default(10)
// @Success      200 {object} map[string][]GameResponse "{"recent": [...], "all_time": [...]}"
// @Router       /games/top-rated [get]
func (h *Handler) GetTopRated(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil || count < 1 || count > catalog.MaxPageSize {
		count = 10
	}
	ctx := c.Request.Context()

	recent, err := h.planner.RecentTopRated(ctx, count)
	if err != nil {
		respondError(c, err)
		return
	}
	allTime, err := h.planner.TopRated(ctx, count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recent":   newGameResponses(recent),
		"all_time": newGameResponses(allTime),
	})
}

// GetGameByID godoc
// @Summary      Get a single game by ID
// @Description  Retrieves details for a single game, including its platforms, genres and franchise.
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} GameResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func (h *Handler) GetGameByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	game, err := h.planner.GetGame(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newGameResponse(*game))
}

// GetRecommendations godoc
// @Summary      Related games
// @Description  Up to 10 games sharing the franchise, a genre, or a similar Metacritic score.
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {array} GameResponse
// @Router       /games/{id}/recommendations [get]
func (h *Handler) GetRecommendations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	games, err := h.recommender.GetRecommendations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameResponses(games))
}

// endregion
