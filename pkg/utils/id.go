package utils

import "github.com/google/uuid"

// Entity ids carry a short type prefix so raw store keys stay readable when
// inspected.
func GenMessageID() string      { return "msg_" + uuid.NewString() }
func GenReactionID() string     { return "rct_" + uuid.NewString() }
func GenConversationID() string { return "cnv_" + uuid.NewString() }
func GenMemberID() string       { return "mbr_" + uuid.NewString() }
func GenUserID() string         { return "usr_" + uuid.NewString() }
