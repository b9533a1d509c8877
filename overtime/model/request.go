package model

import "time"

type RequestStatus string

const (
	RequestStatusPending             RequestStatus = "pending"
	RequestStatusResponded           RequestStatus = "responded"
	RequestStatusCertified           RequestStatus = "certified"
	RequestStatusPendingExecApproval RequestStatus = "pending_exec_approval"
	RequestStatusApproved            RequestStatus = "approved"
	RequestStatusRejected            RequestStatus = "rejected"
)

const (
	RequestTypeStandard       = "standard_request"
	RequestTypeManagerInquiry = "manager_inquiry"
)

const (
	ResponseAccepted = "accepted"
	ResponseDeclined = "declined"
)

// OvertimeRequest is one authorization lifecycle: a worker (or their
// manager, for inquiries) asks for overtime, the recipient responds, the
// manager certifies, an executive role decides.
type OvertimeRequest struct {
	ID             string  `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	OrganizationID string  `gorm:"column:organization_id;type:varchar(36);not null;index" json:"organizationId"`
	ProjectID      *string `gorm:"column:project_id;type:varchar(36)" json:"projectId,omitempty"`

	RequestType   string `gorm:"column:request_type;type:varchar(30);not null" json:"requestType"`
	RequesterID   string `gorm:"column:requester_id;type:varchar(36);not null" json:"requesterId"`
	RequesterName string `gorm:"column:requester_name;type:varchar(100)" json:"requesterName"`
	RecipientID   string `gorm:"column:recipient_id;type:varchar(36);not null" json:"recipientId"`
	RecipientName string `gorm:"column:recipient_name;type:varchar(100)" json:"recipientName"`
	EmployeeID    string `gorm:"column:employee_id;type:varchar(36);not null;index" json:"employeeId"`
	ManagerID     string `gorm:"column:manager_id;type:varchar(36);not null" json:"managerId"`

	Reason         string     `gorm:"column:reason;type:text;not null" json:"reason"`
	EstimatedHours float64    `gorm:"column:estimated_hours;type:decimal(10,2)" json:"estimatedHours"`
	RequestedDate  *time.Time `gorm:"column:requested_date;type:date" json:"requestedDate,omitempty"`

	Status         RequestStatus `gorm:"column:status;type:varchar(30);not null;index" json:"status"`
	Response       string        `gorm:"column:response;type:varchar(20)" json:"response,omitempty"`
	ResponseReason string        `gorm:"column:response_reason;type:text" json:"responseReason,omitempty"`
	RespondedAt    *time.Time    `gorm:"column:responded_at" json:"respondedAt,omitempty"`

	CertifiedBy        string     `gorm:"column:certified_by;type:varchar(36)" json:"certifiedBy,omitempty"`
	CertifiedAt        *time.Time `gorm:"column:certified_at" json:"certifiedAt,omitempty"`
	CertificationNotes string     `gorm:"column:certification_notes;type:text" json:"certificationNotes,omitempty"`

	ExecApproverID  string     `gorm:"column:exec_approver_id;type:varchar(36)" json:"execApproverId,omitempty"`
	ExecApprovedAt  *time.Time `gorm:"column:exec_approved_at" json:"execApprovedAt,omitempty"`
	ExecNotes       string     `gorm:"column:exec_notes;type:text" json:"execNotes,omitempty"`
	RejectionReason string     `gorm:"column:rejection_reason;type:text" json:"rejectionReason,omitempty"`

	ApprovedHours  float64 `gorm:"column:approved_hours;type:decimal(10,2)" json:"approvedHours"`
	HoursUsed      float64 `gorm:"column:hours_used;type:decimal(10,2)" json:"hoursUsed"`
	HoursRemaining float64 `gorm:"column:hours_remaining;type:decimal(10,2)" json:"hoursRemaining"`

	IsActive        bool    `gorm:"column:is_active;not null" json:"isActive"`
	ActiveSessionID *string `gorm:"column:active_session_id;type:varchar(36)" json:"activeSessionId,omitempty"`

	// Version guards the read-then-write races on request state and counters.
	Version int64 `gorm:"column:version;not null" json:"-"`

	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (OvertimeRequest) TableName() string {
	return "overtime_requests"
}

func (r *OvertimeRequest) IsTerminal() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}

// AwaitingExecDecision is true when an executive may approve or reject.
func (r *OvertimeRequest) AwaitingExecDecision() bool {
	return r.Status == RequestStatusCertified || r.Status == RequestStatusPendingExecApproval
}
