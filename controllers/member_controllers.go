package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type MemberController struct {
	Members *services.MemberService
}

func NewMemberController(members *services.MemberService) *MemberController {
	return &MemberController{Members: members}
}

// GetMembers lists members, optionally filtered by ?search= on name, phone
// or code.
func (mc *MemberController) GetMembers(c *gin.Context) {
	members, err := mc.Members.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of members", members)
}

func (mc *MemberController) CreateMember(c *gin.Context) {
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	member, err := mc.Members.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Member %s registered", member.Code)
	utils.RespondJSON(c, http.StatusCreated, "Member created", member)
}

func (mc *MemberController) GetMemberByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	member, err := mc.Members.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Member detail", member)
}

func (mc *MemberController) TopUp(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	member, err := mc.Members.TopUp(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Member %s topped up %s", member.Code, utils.FormatRupiah(req.Amount))
	utils.RespondJSON(c, http.StatusOK, "Wallet topped up", member)
}

func (mc *MemberController) GetPoints(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	entries, err := mc.Members.Ledger(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Points ledger", entries)
}
